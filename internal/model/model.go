// Package model defines the core data types shared across nodpts.
package model

import "strings"

// Severity ranks a secret finding.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Blocking reports whether findings of this severity fail a run under the
// default policy.
func (s Severity) Blocking() bool {
	return s >= SeverityMedium
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Verdict is the binary outcome of a check run.
type Verdict int

const (
	VerdictPass Verdict = iota
	VerdictFail
)

func (v Verdict) String() string {
	if v == VerdictFail {
		return "fail"
	}
	return "pass"
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ExitCode maps the verdict to a process exit status.
func (v Verdict) ExitCode() int {
	if v == VerdictFail {
		return 1
	}
	return 0
}

// StagedFile is the content of one file as recorded in the index at the
// start of a run.
type StagedFile struct {
	Path      string // repo-relative, slash separated
	Language  string // language tag, "" when unknown
	Content   []byte
	Binary    bool
	Truncated bool // content exceeded the read cap
}

// Lines splits the content into lines without their terminators.
func (f StagedFile) Lines() []string {
	if len(f.Content) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(f.Content), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// IsBinary reports whether content looks binary: a NUL byte within the
// first 8000 bytes, the same heuristic git uses.
func IsBinary(content []byte) bool {
	n := len(content)
	if n > 8000 {
		n = 8000
	}
	for _, b := range content[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}
