package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aezell/nodpts/internal/model"
)

// DefaultWorkers bounds concurrent linter processes when none is set.
const DefaultWorkers = 4

// Dispatcher lints staged files with the linter mapped to each file's
// language.
type Dispatcher struct {
	table     Table
	runner    Runner
	workers   int
	root      string
	workspace string
	logger    *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers bounds the number of linters running at once.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithRoot sets the repository root that stdin linters run from, so they
// find the repository's own config and sibling files.
func WithRoot(dir string) Option {
	return func(d *Dispatcher) { d.root = dir }
}

// WithWorkspace sets the parent directory for copies handed to linters
// that read files. Placing it inside the repository lets those linters
// find config files by searching upward. The default is the system temp
// directory.
func WithWorkspace(dir string) Option {
	return func(d *Dispatcher) { d.workspace = dir }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher returns a dispatcher using table and runner. A nil runner
// means ExecRunner.
func NewDispatcher(table Table, runner Runner, opts ...Option) *Dispatcher {
	if runner == nil {
		runner = ExecRunner{}
	}
	d := &Dispatcher{table: table, runner: runner, workers: DefaultWorkers, logger: zap.NewNop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Lint returns one Result per file, in input order. Linters only ever see
// staged content: stdin linters read it from standard input, the others
// get a copy written under a private workspace at the repo-relative path.
func (d *Dispatcher) Lint(ctx context.Context, files []model.StagedFile) []Result {
	results := make([]Result, len(files))
	if len(files) == 0 {
		return results
	}

	var ws string
	if d.needsWorkspace(files) {
		dir, err := os.MkdirTemp(d.workspace, "nodpts-lint-")
		if err != nil {
			d.logger.Warn("creating lint workspace", zap.Error(err))
		} else {
			ws = dir
			defer os.RemoveAll(dir)
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(d.workers)
	for i, f := range files {
		g.Go(func() error {
			results[i] = d.lintFile(ctx, ws, f)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) needsWorkspace(files []model.StagedFile) bool {
	for _, f := range files {
		if l, ok := d.table.Lookup(f.Language); ok && !f.Binary && !l.Stdin {
			return true
		}
	}
	return false
}

func (d *Dispatcher) lintFile(ctx context.Context, ws string, f model.StagedFile) Result {
	res := Result{File: f.Path}
	if f.Binary {
		res.Outcome, res.Reason = Skipped, ReasonBinary
		return res
	}
	linter, ok := d.table.Lookup(f.Language)
	if !ok {
		res.Outcome, res.Reason = Skipped, ReasonNoLinter
		return res
	}
	res.Linter = linter.Name

	if ctx.Err() != nil {
		res.Outcome, res.Reason = Skipped, ReasonTimedOut
		return res
	}
	rel := filepath.FromSlash(f.Path)
	if !filepath.IsLocal(rel) {
		d.logger.Warn("staged path escapes the repository", zap.String("file", f.Path))
		res.Outcome, res.Reason = Skipped, ReasonStagingFailed
		return res
	}

	cmd := Command{Name: linter.Command, Args: linter.args(rel)}
	if linter.Stdin {
		cmd.Dir = d.root
		cmd.Stdin = f.Content
		if cmd.Stdin == nil {
			cmd.Stdin = []byte{}
		}
	} else {
		if ws == "" {
			res.Outcome, res.Reason = Skipped, ReasonStagingFailed
			return res
		}
		if err := materialize(ws, rel, f.Content); err != nil {
			d.logger.Warn("materializing staged file", zap.String("file", f.Path), zap.Error(err))
			res.Outcome, res.Reason = Skipped, ReasonStagingFailed
			return res
		}
		cmd.Dir = ws
	}

	lctx := ctx
	if linter.Timeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, linter.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := d.runner.Run(lctx, cmd)
	res.Duration = time.Since(start)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		d.logger.Warn("linter timed out",
			zap.String("file", f.Path),
			zap.String("linter", linter.Name),
			zap.Duration("timeout", linter.Timeout))
		res.Outcome, res.Reason = Skipped, ReasonTimedOut
	case errors.Is(err, ErrNotInstalled):
		d.logger.Debug("linter not installed", zap.String("linter", linter.Command))
		res.Outcome, res.Reason = Skipped, ReasonNotInstalled
	case err != nil:
		d.logger.Warn("running linter", zap.String("linter", linter.Name), zap.Error(err))
		res.Outcome, res.Reason = Skipped, ReasonNotInstalled
	case out.ExitCode == 0:
		res.Outcome = Passed
	case linter.toolError(out.ExitCode):
		res.Outcome, res.Reason = Skipped, ReasonLinterError
		res.Diagnostics = diagnostics(out, cmd.Dir, f.Path)
		d.logger.Warn("linter failed to run",
			zap.String("file", f.Path),
			zap.String("linter", linter.Name),
			zap.Int("exit_code", out.ExitCode))
	default:
		res.Outcome = Failed
		res.Diagnostics = diagnostics(out, cmd.Dir, f.Path)
	}
	return res
}

// materialize writes content to rel under root.
func materialize(root, rel string, content []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, content, 0o644)
}

// diagnostics returns the non-empty output lines with paths under dir and
// the stdin placeholder rewritten to the repo path.
func diagnostics(out Output, dir, path string) []string {
	var replacer *strings.Replacer
	if dir != "" {
		full := filepath.Join(dir, filepath.FromSlash(path))
		replacer = strings.NewReplacer(full, path, dir+string(filepath.Separator), "", "<stdin>", path)
	} else {
		replacer = strings.NewReplacer("<stdin>", path)
	}

	var lines []string
	for _, stream := range [][]byte{out.Stdout, out.Stderr} {
		for _, line := range strings.Split(string(stream), "\n") {
			line = strings.TrimRight(line, "\r \t")
			if strings.TrimSpace(line) == "" {
				continue
			}
			lines = append(lines, replacer.Replace(line))
		}
	}
	if len(lines) == 0 {
		lines = []string{fmt.Sprintf("exit status %d", out.ExitCode)}
	}
	return lines
}
