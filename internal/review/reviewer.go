package review

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aezell/nodpts/internal/config"
)

// Default models for providers that cannot serve the groq default.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

var credentialEnv = map[string]string{
	"groq":      "GROQ_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// CredentialEnv returns the environment variable holding the API key for
// cfg's provider.
func CredentialEnv(cfg *config.Config) string {
	if cfg.AIAPIKeyEnv != "" {
		return cfg.AIAPIKeyEnv
	}
	return credentialEnv[cfg.AIProvider]
}

// Options configures a Reviewer.
type Options struct {
	Enabled bool
	Model   string
	// Completer is nil when no credential is available.
	Completer         Completer
	RequestsPerMinute int
	Timeout           time.Duration // per remote call
	RateLimitWait     time.Duration // longest wait for a permit
	Redact            func(string) string
	Logger            *zap.Logger
}

// Reviewer issues at most one remote call per Review, rate limited across
// calls on the same Reviewer.
type Reviewer struct {
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New returns a Reviewer.
func New(opts Options) *Reviewer {
	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = config.DefaultRequestsPerMinute
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reviewer{
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60), 1),
		logger:  logger,
	}
}

// FromConfig builds a Reviewer for cfg's provider, reading the credential
// with getenv (os.Getenv when nil).
func FromConfig(cfg *config.Config, redact func(string) string, logger *zap.Logger, getenv func(string) string) *Reviewer {
	if getenv == nil {
		getenv = os.Getenv
	}
	opts := Options{
		Enabled:           cfg.AIEnabled,
		Model:             cfg.AIModel,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Timeout:           cfg.Timeouts.AI.Duration,
		RateLimitWait:     cfg.Timeouts.RateLimitWait.Duration,
		Redact:            redact,
		Logger:            logger,
	}

	key := strings.TrimSpace(getenv(CredentialEnv(cfg)))
	if key == "" {
		return New(opts)
	}
	switch cfg.AIProvider {
	case "openai":
		if opts.Model == config.DefaultAIModel {
			opts.Model = DefaultOpenAIModel
		}
		opts.Completer = NewOpenAICompleter(key, cfg.AIBaseURL, opts.Model)
	case "anthropic":
		if opts.Model == config.DefaultAIModel {
			opts.Model = DefaultAnthropicModel
		}
		opts.Completer = NewAnthropicCompleter(key, cfg.AIBaseURL, opts.Model)
	default:
		base := cfg.AIBaseURL
		if base == "" {
			base = GroqBaseURL
		}
		opts.Completer = NewOpenAICompleter(key, base, opts.Model)
	}
	return New(opts)
}

// Review classifies diff. It never returns an error: every failure is an
// Unavailable verdict with a reason.
func (r *Reviewer) Review(ctx context.Context, diff string) Verdict {
	start := time.Now()
	v := r.review(ctx, diff)
	v.Model = r.opts.Model
	v.Duration = time.Since(start)
	return v
}

func (r *Reviewer) review(ctx context.Context, diff string) Verdict {
	if !r.opts.Enabled {
		return UnavailableVerdict(ReasonDisabled, "")
	}
	if strings.TrimSpace(diff) == "" {
		return UnavailableVerdict(ReasonEmptyDiff, "")
	}
	if r.opts.Completer == nil {
		return UnavailableVerdict(ReasonMissingCredential, "")
	}

	if err := r.acquire(ctx); err != nil {
		r.logger.Warn("no review permit", zap.Duration("timeout", r.opts.RateLimitWait), zap.Error(err))
		return UnavailableVerdict(ReasonRateLimited, err.Error())
	}

	cctx, cancel := r.withTimeout(ctx, r.opts.Timeout)
	defer cancel()

	text, err := r.opts.Completer.Complete(cctx, SystemPrompt(), BuildPrompt(diff, r.opts.Redact))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			r.logger.Warn("review timed out", zap.Duration("timeout", r.opts.Timeout))
			return UnavailableVerdict(ReasonTimeout, err.Error())
		}
		r.logger.Warn("review request failed", zap.Error(err))
		return UnavailableVerdict(ReasonRequestFailed, err.Error())
	}

	outcome, rationale, ok := ParseResponse(text)
	if !ok {
		r.logger.Debug("unparseable review response", zap.String("response", text))
		return UnavailableVerdict(ReasonUnparseable, firstLine(text))
	}
	return Verdict{Outcome: outcome, Rationale: rationale}
}

func (r *Reviewer) acquire(ctx context.Context) error {
	wctx, cancel := r.withTimeout(ctx, r.opts.RateLimitWait)
	defer cancel()
	return r.limiter.Wait(wctx)
}

func (r *Reviewer) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
