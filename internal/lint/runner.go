package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrNotInstalled indicates the executable could not be found or started.
var ErrNotInstalled = errors.New("executable not installed")

// Command is one process invocation. A nil Stdin reads from the null
// device.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Stdin []byte
}

// Output is what a finished process produced.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner executes commands. A non-zero exit is not an error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Output, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output pipes after the
	// process is killed.
	WaitDelay time.Duration
}

// Run implements Runner. When ctx ends first the process is killed and
// ctx.Err() is returned.
func (r ExecRunner) Run(ctx context.Context, cmd Command) (Output, error) {
	path, err := exec.LookPath(cmd.Name)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %s: %v", ErrNotInstalled, cmd.Name, err)
	}

	c := exec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = r.WaitDelay
	if c.WaitDelay == 0 {
		c.WaitDelay = 2 * time.Second
	}
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err = c.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrNotInstalled, cmd.Name, err)
	}
	return out, nil
}
