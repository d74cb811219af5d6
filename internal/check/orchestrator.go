// Package check runs every checker against one snapshot of the staged files
// and reduces their results to a verdict.
package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aezell/nodpts/internal/config"
	"github.com/aezell/nodpts/internal/diff"
	"github.com/aezell/nodpts/internal/lint"
	"github.com/aezell/nodpts/internal/model"
	"github.com/aezell/nodpts/internal/review"
	"github.com/aezell/nodpts/internal/secrets"
)

// Source provides the staged state of the repository.
type Source interface {
	Snapshot(ctx context.Context) ([]model.StagedFile, error)
	DiffStaged(ctx context.Context) (string, error)
}

// Scanner finds secrets. *secrets.Scanner satisfies it.
type Scanner interface {
	Scan(ctx context.Context, files []model.StagedFile, ignore secrets.PathMatcher) ([]secrets.Finding, error)
}

// Linter lints files. *lint.Dispatcher satisfies it.
type Linter interface {
	Lint(ctx context.Context, files []model.StagedFile) []lint.Result
}

// Reviewer reviews a diff. *review.Reviewer satisfies it.
type Reviewer interface {
	Review(ctx context.Context, diff string) review.Verdict
}

// Bypass consumes the one-time skip token. *bypass.Gate satisfies it.
type Bypass interface {
	ConsumeIfPresent() (bool, error)
}

// Checkers are the per-run checker instances built from the configuration.
type Checkers struct {
	Scanner  Scanner
	Linter   Linter
	Reviewer Reviewer
}

// Orchestrator drives one check run.
type Orchestrator struct {
	Bypass      Bypass
	LoadConfig  func() (*config.Config, error)
	Source      Source
	NewCheckers func(cfg *config.Config, logger *zap.Logger) (Checkers, error)
	Logger      *zap.Logger
}

// Run executes the pipeline. The returned error is fatal (bad config or an
// unreadable repository); checker failures are folded into the Report.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", runID))

	report := &Report{RunID: runID, Findings: []secrets.Finding{}, LintResults: []lint.Result{}}
	defer func() { report.Duration = time.Since(start) }()

	if o.Bypass != nil {
		consumed, err := o.Bypass.ConsumeIfPresent()
		if err != nil {
			logger.Warn("bypass token could not be consumed, running checks", zap.Error(err))
		}
		if consumed {
			logger.Info("bypass token consumed, skipping checks")
			report.Bypassed = true
			report.Verdict = model.VerdictPass
			return report, nil
		}
	}

	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, err
	}
	checkers, err := o.NewCheckers(cfg, logger)
	if err != nil {
		return nil, err
	}

	rctx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Run.Duration)
	defer cancel()

	files, err := o.Source.Snapshot(rctx)
	if err != nil {
		return nil, fmt.Errorf("reading staged files: %w", err)
	}
	report.StagedCount = len(files)
	if len(files) == 0 {
		logger.Debug("nothing staged")
		report.Verdict = model.VerdictPass
		return report, nil
	}

	ignore := cfg.Ignore()
	var lintFiles []model.StagedFile
	for _, f := range files {
		if ignore.Match(f.Path) {
			report.IgnoredCount++
			continue
		}
		lintFiles = append(lintFiles, f)
	}
	logger.Debug("snapshot taken",
		zap.Int("staged", report.StagedCount),
		zap.Int("ignored", report.IgnoredCount))

	statuses := make([]CheckerStatus, 3)
	var findings []secrets.Finding
	var lints []lint.Result
	verdict := review.UnavailableVerdict(review.ReasonInternal, "")

	g := new(errgroup.Group)
	g.Go(func() error {
		statuses[0] = guard(logger, CheckerSecrets, func() CheckerStatus {
			var err error
			findings, err = checkers.Scanner.Scan(rctx, files, ignore)
			return scanStatus(rctx, err)
		})
		return nil
	})
	g.Go(func() error {
		statuses[1] = guard(logger, CheckerLint, func() CheckerStatus {
			lints = checkers.Linter.Lint(rctx, lintFiles)
			return lintStatus(lints)
		})
		return nil
	})
	g.Go(func() error {
		statuses[2] = guard(logger, CheckerReview, func() CheckerStatus {
			raw, err := o.Source.DiffStaged(rctx)
			if err != nil {
				verdict = review.UnavailableVerdict(review.ReasonDiffUnavailable, err.Error())
				return CheckerStatus{State: StateDegraded, Detail: err.Error()}
			}
			verdict = checkers.Reviewer.Review(rctx, diff.Filter(raw, func(p string) bool { return !ignore.Match(p) }))
			if verdict.Reason == review.ReasonTimeout {
				return CheckerStatus{State: StateTimedOut, Detail: verdict.Detail}
			}
			return CheckerStatus{}
		})
		return nil
	})
	_ = g.Wait()

	if findings != nil {
		report.Findings = findings
	}
	if lints != nil {
		report.LintResults = lints
	}
	report.Review = &verdict
	report.Checkers = statuses
	report.Verdict, report.Reasons = Evaluate(report, cfg.Policy)

	logger.Debug("run complete",
		zap.Stringer("verdict", report.Verdict),
		zap.Int("findings", len(report.Findings)),
		zap.Int("lint_results", len(report.LintResults)),
		zap.Stringer("review", verdict.Outcome))
	return report, nil
}

// guard runs fn, converting a panic into a degraded status so one checker
// cannot take down its siblings.
func guard(logger *zap.Logger, name string, fn func() CheckerStatus) (status CheckerStatus) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("checker panicked", zap.String("checker", name), zap.Any("panic", r), zap.Stack("stack"))
			status = CheckerStatus{State: StateDegraded, Detail: fmt.Sprintf("panic: %v", r)}
		}
		status.Name = name
		status.Duration = time.Since(start)
		if status.State == StateTimedOut {
			logger.Warn("checker timed out", zap.String("checker", name), zap.Duration("timeout", status.Duration))
		}
	}()
	return fn()
}

func scanStatus(ctx context.Context, err error) CheckerStatus {
	switch {
	case err == nil:
		return CheckerStatus{}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return CheckerStatus{State: StateTimedOut, Detail: "partial findings: " + err.Error()}
	default:
		return CheckerStatus{State: StateDegraded, Detail: "partial findings: " + err.Error()}
	}
}

func lintStatus(results []lint.Result) CheckerStatus {
	var timedOut int
	for _, r := range results {
		if r.Reason == lint.ReasonTimedOut {
			timedOut++
		}
	}
	if timedOut > 0 {
		return CheckerStatus{State: StateTimedOut, Detail: fmt.Sprintf("%d linter(s) timed out", timedOut)}
	}
	return CheckerStatus{}
}
