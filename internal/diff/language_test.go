package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"config.py", LangPython},
		{"src/app/index.TSX", LangTypeScript},
		{"web/main.jsx", LangJavaScript},
		{"crates/core/lib.rs", LangRust},
		{"scripts/build.sh", LangShell},
		{"cmd/main.go", LangGo},
		{"LICENSE-unknown-format.zzz", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
}

func TestDetectLanguageFallsBackToLexer(t *testing.T) {
	// Not in the extension table; chroma knows it.
	lang := DetectLanguage("Dockerfile")
	assert.NotEmpty(t, lang)
}
