package secrets

import (
	"errors"
	"fmt"
)

// ErrInvalidPattern indicates a custom pattern failed to compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// PatternError carries the source of the custom pattern that failed.
type PatternError struct {
	Index  int // position in custom_patterns, 0-based
	Source string
	Err    error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%v: custom pattern #%d %q: %v", ErrInvalidPattern, e.Index+1, e.Source, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidPattern) hold.
func (e *PatternError) Is(target error) bool { return target == ErrInvalidPattern }
