package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTOML indicates the file is not valid TOML or does not fit
	// the schema.
	ErrInvalidTOML = errors.New("invalid TOML")

	// ErrInvalidValue indicates a field holds a value outside its range.
	ErrInvalidValue = errors.New("invalid config value")
)

// Error is a fatal configuration problem. It aborts a run before any
// checker starts.
type Error struct {
	Path string
	Line int // 1-based, 0 when unknown
	Err  error
}

func (e *Error) Error() string {
	loc := e.Path
	if loc == "" {
		loc = DefaultFileName
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	return fmt.Sprintf("config error: %s: %v", loc, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
