package diff

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// Language tags with linters or special handling.
const (
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangRust       = "rust"
	LangGo         = "go"
	LangShell      = "shell"
	LangBinary     = "binary"
)

var extLanguages = map[string]string{
	".py":   LangPython,
	".pyi":  LangPython,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".mts":  LangTypeScript,
	".rs":   LangRust,
	".go":   LangGo,
	".sh":   LangShell,
	".bash": LangShell,
}

// DetectLanguage returns the language tag for a file path. Known extensions
// map to stable tags; anything else falls back to the name of the chroma
// lexer matching the filename, lower-cased. Unknown files return "".
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extLanguages[ext]; ok {
		return lang
	}

	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil && ext != "" {
		lexer = lexers.Match("file" + ext)
	}
	if lexer == nil {
		return ""
	}
	return strings.ToLower(lexer.Config().Name)
}
