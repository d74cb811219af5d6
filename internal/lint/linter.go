// Package lint runs external linters against staged file content.
package lint

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/aezell/nodpts/internal/config"
	"github.com/aezell/nodpts/internal/diff"
)

// PathArg is replaced in Linter.Args by the file's repo-relative path.
const PathArg = "{path}"

// Linter is the external tool assigned to one language.
type Linter struct {
	Name    string
	Command string
	Args    []string
	Timeout time.Duration
	// Stdin linters run from the repository root and read the staged
	// content on standard input. Others get a copy of the file in a
	// workspace and its path appended to Args unless Args holds PathArg.
	Stdin bool
	// ErrorCodes are exit statuses meaning the linter itself failed
	// (bad config, internal error) rather than reporting problems.
	ErrorCodes []int
}

// args returns the arguments for the file at rel.
func (l Linter) args(rel string) []string {
	out := make([]string, 0, len(l.Args)+1)
	substituted := false
	for _, a := range l.Args {
		if strings.Contains(a, PathArg) {
			a = strings.ReplaceAll(a, PathArg, rel)
			substituted = true
		}
		out = append(out, a)
	}
	if !substituted && !l.Stdin {
		out = append(out, rel)
	}
	return out
}

// toolError reports whether code is one of the linter's own error statuses.
func (l Linter) toolError(code int) bool {
	return slices.Contains(l.ErrorCodes, code)
}

// Table maps a language tag to its linter. Tables are never modified after
// construction; WithOverrides returns a new one.
type Table struct {
	linters map[string]Linter
}

// DefaultTable returns the built-in mapping with every timeout set to d.
func DefaultTable(d time.Duration) Table {
	eslint := Linter{
		Name:       "eslint",
		Command:    "eslint",
		Args:       []string{"--no-error-on-unmatched-pattern", "--stdin", "--stdin-filename", PathArg},
		Timeout:    d,
		Stdin:      true,
		ErrorCodes: []int{2},
	}
	return Table{linters: map[string]Linter{
		diff.LangPython: {
			Name:       "ruff",
			Command:    "ruff",
			Args:       []string{"check", "--stdin-filename", PathArg, "-"},
			Timeout:    d,
			Stdin:      true,
			ErrorCodes: []int{2},
		},
		diff.LangJavaScript: eslint,
		diff.LangTypeScript: eslint,
		diff.LangRust: {
			Name:    "rustfmt",
			Command: "rustfmt",
			Args:    []string{"--check"},
			Timeout: d,
			Stdin:   true,
		},
		diff.LangShell: {
			Name:       "shellcheck",
			Command:    "shellcheck",
			Args:       []string{"-"},
			Timeout:    d,
			Stdin:      true,
			ErrorCodes: []int{3, 4},
		},
	}}
}

// TableFromConfig applies the [linters] tables of cfg to the defaults.
func TableFromConfig(cfg *config.Config) Table {
	return DefaultTable(cfg.Timeouts.Linter.Duration).WithOverrides(cfg.Linters, cfg.Timeouts.Linter.Duration)
}

// WithOverrides returns a copy of t with overrides applied. An override
// with Disabled removes the language; one without a timeout inherits d.
func (t Table) WithOverrides(overrides map[string]config.LinterOverride, d time.Duration) Table {
	out := make(map[string]Linter, len(t.linters)+len(overrides))
	for lang, l := range t.linters {
		out[lang] = l
	}
	for lang, o := range overrides {
		if o.Disabled {
			delete(out, lang)
			continue
		}
		timeout := o.Timeout.Duration
		if timeout <= 0 {
			timeout = d
		}
		out[lang] = Linter{
			Name:       o.Command,
			Command:    o.Command,
			Args:       append([]string(nil), o.Args...),
			Timeout:    timeout,
			Stdin:      o.Stdin,
			ErrorCodes: append([]int(nil), o.ErrorCodes...),
		}
	}
	return Table{linters: out}
}

// Lookup returns the linter for lang.
func (t Table) Lookup(lang string) (Linter, bool) {
	l, ok := t.linters[lang]
	return l, ok
}

// Languages returns the mapped language tags, sorted.
func (t Table) Languages() []string {
	langs := make([]string, 0, len(t.linters))
	for lang := range t.linters {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
