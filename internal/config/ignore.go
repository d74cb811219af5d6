package config

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Matcher decides whether a repo-relative path is excluded by
// ignored_files. Patterns follow gitignore rules: a pattern without a slash
// matches the file name at any depth, "**" spans directories and a leading
// "!" re-includes.
type Matcher struct {
	patterns []string
	m        gitignore.Matcher
}

// NewMatcher compiles globs. Blank entries and comments are skipped.
func NewMatcher(globs []string) *Matcher {
	var ps []gitignore.Pattern
	var kept []string
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" || strings.HasPrefix(g, "#") {
			continue
		}
		kept = append(kept, g)
		ps = append(ps, gitignore.ParsePattern(g, nil))
	}
	return &Matcher{patterns: kept, m: gitignore.NewMatcher(ps)}
}

// Match reports whether path is ignored.
func (m *Matcher) Match(path string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	path = strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "./")
	return m.m.Match(strings.Split(path, "/"), false)
}

// Patterns returns the compiled globs in file order.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}
