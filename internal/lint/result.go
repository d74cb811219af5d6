package lint

import "time"

// Outcome is the result class of linting one file.
type Outcome int

const (
	Passed Outcome = iota
	Failed
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Skip reasons.
const (
	ReasonNotInstalled  = "linter not installed"
	ReasonNoLinter      = "no linter for language"
	ReasonTimedOut      = "linter timed out"
	ReasonBinary        = "binary file"
	ReasonStagingFailed = "could not materialize file"
	ReasonLinterError   = "linter error"
)

// Result is the outcome of linting one staged file.
type Result struct {
	File        string        `json:"file"`
	Linter      string        `json:"linter,omitempty"`
	Outcome     Outcome       `json:"outcome"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
	Reason      string        `json:"reason,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Exempt reports whether a skip is expected and never counts against the
// run, even under a strict policy.
func (r Result) Exempt() bool {
	return r.Outcome == Skipped && (r.Reason == ReasonNoLinter || r.Reason == ReasonBinary)
}
