package check

import (
	"errors"

	"go.uber.org/zap"

	"github.com/aezell/nodpts/internal/config"
	"github.com/aezell/nodpts/internal/lint"
	"github.com/aezell/nodpts/internal/review"
	"github.com/aezell/nodpts/internal/secrets"
)

// BuildCatalog compiles the rule catalog for cfg. An invalid custom pattern
// becomes a *config.Error pointing at the line that holds it.
func BuildCatalog(cfg *config.Config) (*secrets.Catalog, error) {
	catalog, err := secrets.Build(cfg.CustomPatterns)
	if err != nil {
		var perr *secrets.PatternError
		if errors.As(err, &perr) {
			return nil, cfg.Wrap(err, perr.Source)
		}
		return nil, cfg.Wrap(err, "custom_patterns")
	}
	return catalog, nil
}

// Workspace locates the repository for checkers that run external tools.
type Workspace struct {
	Root   string // work tree root; stdin linters run here
	GitDir string // copies for file-reading linters go under it
}

// DefaultCheckers returns a constructor for the production checkers of the
// repository at ws.
func DefaultCheckers(ws Workspace) func(*config.Config, *zap.Logger) (Checkers, error) {
	return func(cfg *config.Config, logger *zap.Logger) (Checkers, error) {
		catalog, err := BuildCatalog(cfg)
		if err != nil {
			return Checkers{}, err
		}

		opts := []secrets.Option{secrets.WithLogger(logger)}
		if cfg.ExtendedRules {
			gl, err := secrets.NewGitleaks()
			if err != nil {
				logger.Warn("extended rules unavailable", zap.Error(err))
			} else {
				opts = append(opts, secrets.WithExtended(gl))
			}
		}

		return Checkers{
			Scanner: secrets.NewScanner(catalog, opts...),
			Linter: lint.NewDispatcher(lint.TableFromConfig(cfg), lint.ExecRunner{},
				lint.WithWorkers(cfg.MaxLintWorkers),
				lint.WithRoot(ws.Root),
				lint.WithWorkspace(ws.GitDir),
				lint.WithLogger(logger)),
			Reviewer: review.FromConfig(cfg, catalog.Redact, logger, nil),
		}, nil
	}
}
