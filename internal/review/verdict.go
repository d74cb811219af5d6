// Package review asks a remote language model to approve or reject a
// staged diff.
package review

import "time"

// Outcome classifies a review.
type Outcome int

const (
	Approved Outcome = iota
	Rejected
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Reasons a review is unavailable.
const (
	ReasonDisabled          = "disabled"
	ReasonEmptyDiff         = "empty diff"
	ReasonMissingCredential = "missing API credential"
	ReasonRateLimited       = "rate limited"
	ReasonTimeout           = "timeout"
	ReasonRequestFailed     = "request failed"
	ReasonUnparseable       = "unparseable response"
	ReasonDiffUnavailable   = "diff unavailable"
	ReasonInternal          = "internal error"
)

// Verdict is the single review result of a run.
type Verdict struct {
	Outcome   Outcome       `json:"outcome"`
	Rationale string        `json:"rationale,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Model     string        `json:"model,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// UnavailableVerdict builds a verdict for reason.
func UnavailableVerdict(reason, detail string) Verdict {
	return Verdict{Outcome: Unavailable, Reason: reason, Detail: detail}
}
