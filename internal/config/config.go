// Package config loads no-dpts.toml, the per-repository configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// DefaultFileName is looked up at the repository root.
const DefaultFileName = "no-dpts.toml"

// Defaults for fields absent from the file.
const (
	DefaultAIModel           = "llama-3.3-70b-versatile"
	DefaultAIProvider        = "groq"
	DefaultRequestsPerMinute = 30
	DefaultMaxLintWorkers    = 4
)

// Providers accepted by ai_provider.
var Providers = []string{"groq", "openai", "anthropic"}

// Config is the parsed configuration. It is read-only after Load.
type Config struct {
	IgnoredFiles   []string                  `toml:"ignored_files"`
	CustomPatterns []string                  `toml:"custom_patterns"`
	AIModel        string                    `toml:"ai_model"`
	AIProvider     string                    `toml:"ai_provider"`
	AIEnabled      bool                      `toml:"ai_enabled"`
	AIAPIKeyEnv    string                    `toml:"ai_api_key_env"`
	AIBaseURL      string                    `toml:"ai_base_url"`
	ExtendedRules  bool                      `toml:"extended_rules"`
	MaxLintWorkers int                       `toml:"max_lint_workers"`
	RateLimit      RateLimit                 `toml:"rate_limit"`
	Policy         Policy                    `toml:"policy"`
	Timeouts       Timeouts                  `toml:"timeouts"`
	Linters        map[string]LinterOverride `toml:"linters"`

	path      string
	source    []byte
	undecoded []string
	ignore    *Matcher
}

// RateLimit bounds calls to the remote reviewer.
type RateLimit struct {
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// Policy decides which non-blocking outcomes fail a run anyway.
type Policy struct {
	FailOnLow           bool `toml:"fail_on_low"`
	FailOnSkippedLint   bool `toml:"fail_on_skipped_lint"`
	FailOnAIUnavailable bool `toml:"fail_on_ai_unavailable"`
	FailOnDegraded      bool `toml:"fail_on_degraded"`
}

// Timeouts bound every suspension point of a run.
type Timeouts struct {
	Linter        Duration `toml:"linter"`
	AI            Duration `toml:"ai"`
	RateLimitWait Duration `toml:"rate_limit_wait"`
	Run           Duration `toml:"run"`
}

// LinterOverride replaces, adds or disables the linter for one language.
type LinterOverride struct {
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	Timeout    Duration `toml:"timeout"`
	Disabled   bool     `toml:"disabled"`
	Stdin      bool     `toml:"stdin"`
	ErrorCodes []int    `toml:"error_codes"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{
		AIModel:        DefaultAIModel,
		AIProvider:     DefaultAIProvider,
		AIEnabled:      true,
		MaxLintWorkers: DefaultMaxLintWorkers,
		RateLimit:      RateLimit{RequestsPerMinute: DefaultRequestsPerMinute},
		Timeouts: Timeouts{
			Linter:        Duration{30 * time.Second},
			AI:            Duration{60 * time.Second},
			RateLimitWait: Duration{5 * time.Second},
			Run:           Duration{3 * time.Minute},
		},
	}
	cfg.ignore = NewMatcher(nil)
	return cfg
}

// Load reads the file at path. A missing file yields Default; a malformed
// one yields an *Error. Keys the schema does not know are logged.
func Load(path string, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("no config file, using defaults", zap.String("path", path))
		cfg := Default()
		cfg.path = path
		return cfg, nil
	}
	if err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("reading config: %w", err)}
	}

	cfg, err := Parse(data)
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			cerr.Path = path
			return nil, cerr
		}
		return nil, &Error{Path: path, Err: err}
	}
	cfg.path = path

	for _, key := range cfg.undecoded {
		logger.Warn("unknown config key", zap.String("path", path), zap.String("key", key))
	}
	return cfg, nil
}

// Parse decodes a TOML document on top of Default and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	if err != nil {
		return nil, decodeError(err)
	}
	cfg.source = data
	for _, key := range md.Undecoded() {
		cfg.undecoded = append(cfg.undecoded, key.String())
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.ignore = NewMatcher(cfg.IgnoredFiles)
	return cfg, nil
}

func decodeError(err error) error {
	var perr toml.ParseError
	if errors.As(err, &perr) {
		return &Error{Line: perr.Position.Line, Err: fmt.Errorf("%w: %s", ErrInvalidTOML, perr.Message)}
	}
	return &Error{Err: fmt.Errorf("%w: %v", ErrInvalidTOML, err)}
}

func (c *Config) validate() error {
	if c.RateLimit.RequestsPerMinute <= 0 {
		return c.invalid("rate_limit.requests_per_minute", "must be positive, got %d", c.RateLimit.RequestsPerMinute)
	}
	if c.MaxLintWorkers <= 0 {
		return c.invalid("max_lint_workers", "must be positive, got %d", c.MaxLintWorkers)
	}
	if !knownProvider(c.AIProvider) {
		return c.invalid("ai_provider", "unknown provider %q (want one of %s)", c.AIProvider, strings.Join(Providers, ", "))
	}
	if strings.TrimSpace(c.AIModel) == "" {
		return c.invalid("ai_model", "must not be empty")
	}
	for name, d := range map[string]Duration{
		"timeouts.linter":          c.Timeouts.Linter,
		"timeouts.ai":              c.Timeouts.AI,
		"timeouts.rate_limit_wait": c.Timeouts.RateLimitWait,
		"timeouts.run":             c.Timeouts.Run,
	} {
		if d.Duration <= 0 {
			return c.invalid(name, "must be a positive duration")
		}
	}
	for lang, o := range c.Linters {
		if !o.Disabled && strings.TrimSpace(o.Command) == "" {
			return c.invalid("linters."+lang, "command is required unless disabled")
		}
	}
	return nil
}

func (c *Config) invalid(key, format string, args ...any) error {
	return &Error{
		Line: c.LineOf(lastSegment(key)),
		Err:  fmt.Errorf("%w: %s: %s", ErrInvalidValue, key, fmt.Sprintf(format, args...)),
	}
}

func knownProvider(p string) bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// Path is the file the configuration was loaded from, or would have been.
func (c *Config) Path() string { return c.path }

// Ignore returns the matcher built from ignored_files.
func (c *Config) Ignore() *Matcher {
	if c.ignore == nil {
		return NewMatcher(c.IgnoredFiles)
	}
	return c.ignore
}

// LineOf returns the 1-based line of the first occurrence of needle in the
// source file, or 0.
func (c *Config) LineOf(needle string) int {
	if needle == "" || len(c.source) == 0 {
		return 0
	}
	for i, line := range strings.Split(string(c.source), "\n") {
		if strings.Contains(line, needle) {
			return i + 1
		}
	}
	return 0
}

// Wrap attaches file and line context to an error raised while applying
// the configuration, such as a custom pattern that fails to compile.
func (c *Config) Wrap(err error, needle string) *Error {
	return &Error{Path: c.path, Line: c.LineOf(needle), Err: err}
}

func lastSegment(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[i+1:]
	}
	return key
}
