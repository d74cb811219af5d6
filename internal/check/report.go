package check

import (
	"fmt"
	"time"

	"github.com/aezell/nodpts/internal/config"
	"github.com/aezell/nodpts/internal/lint"
	"github.com/aezell/nodpts/internal/model"
	"github.com/aezell/nodpts/internal/review"
	"github.com/aezell/nodpts/internal/secrets"
)

// Checker names.
const (
	CheckerSecrets = "secrets"
	CheckerLint    = "lint"
	CheckerReview  = "review"
)

// State is how far a checker got.
type State int

const (
	StateOK State = iota
	StateDegraded
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateDegraded:
		return "degraded"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckerStatus records how one checker finished.
type CheckerStatus struct {
	Name     string        `json:"name"`
	State    State         `json:"state"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report is the aggregate result of one run. It is never persisted.
type Report struct {
	RunID        string            `json:"run_id"`
	Verdict      model.Verdict     `json:"verdict"`
	Reasons      []string          `json:"reasons,omitempty"`
	Bypassed     bool              `json:"bypassed"`
	StagedCount  int               `json:"staged_count"`
	IgnoredCount int               `json:"ignored_count"`
	Findings     []secrets.Finding `json:"findings"`
	LintResults  []lint.Result     `json:"lint_results"`
	Review       *review.Verdict   `json:"review,omitempty"`
	Checkers     []CheckerStatus   `json:"checkers,omitempty"`
	Duration     time.Duration     `json:"duration_ns"`
}

// Evaluate derives the verdict and the reasons for a failure. Under the
// zero Policy a run fails iff there is a medium or high finding, a failed
// lint, or a rejecting review.
func Evaluate(r *Report, p config.Policy) (model.Verdict, []string) {
	if r.Bypassed {
		return model.VerdictPass, nil
	}
	var reasons []string

	var blocking, low int
	for _, f := range r.Findings {
		if f.Severity.Blocking() {
			blocking++
		} else {
			low++
		}
	}
	if blocking > 0 {
		reasons = append(reasons, fmt.Sprintf("%d secret finding(s) at medium or high severity", blocking))
	}
	if p.FailOnLow && low > 0 {
		reasons = append(reasons, fmt.Sprintf("%d low severity finding(s) (policy.fail_on_low)", low))
	}

	var failed, skipped int
	for _, l := range r.LintResults {
		switch {
		case l.Outcome == lint.Failed:
			failed++
		case l.Outcome == lint.Skipped && !l.Exempt():
			skipped++
		}
	}
	if failed > 0 {
		reasons = append(reasons, fmt.Sprintf("%d file(s) failed linting", failed))
	}
	if p.FailOnSkippedLint && skipped > 0 {
		reasons = append(reasons, fmt.Sprintf("%d file(s) not linted (policy.fail_on_skipped_lint)", skipped))
	}

	if v := r.Review; v != nil {
		switch {
		case v.Outcome == review.Rejected:
			reasons = append(reasons, "AI review rejected the change")
		case v.Outcome == review.Unavailable && p.FailOnAIUnavailable &&
			v.Reason != review.ReasonDisabled && v.Reason != review.ReasonEmptyDiff:
			reasons = append(reasons, fmt.Sprintf("AI review unavailable: %s (policy.fail_on_ai_unavailable)", v.Reason))
		}
	}

	if p.FailOnDegraded {
		for _, c := range r.Checkers {
			if c.State != StateOK {
				reasons = append(reasons, fmt.Sprintf("%s checker %s (policy.fail_on_degraded)", c.Name, c.State))
			}
		}
	}

	if len(reasons) > 0 {
		return model.VerdictFail, reasons
	}
	return model.VerdictPass, nil
}
