package secrets

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/aezell/nodpts/internal/model"
)

// Finding is one rule match on one line of a staged file. Excerpt is masked
// and never holds the full matched text.
type Finding struct {
	Rule     string         `json:"rule"`
	Severity model.Severity `json:"severity"`
	File     string         `json:"file"`
	Line     int            `json:"line"`
	Column   int            `json:"column"`
	Excerpt  string         `json:"excerpt"`
}

// PathMatcher excludes paths from scanning. *config.Matcher satisfies it.
type PathMatcher interface {
	Match(path string) bool
}

// LineMatch is a hit reported by a LineDetector.
type LineMatch struct {
	Rule   string
	Column int // 1-based
	Text   string
}

// LineDetector is a secondary detector applied after the catalog.
type LineDetector interface {
	DetectLine(line string) []LineMatch
}

const (
	excerptPrefix   = 4
	excerptMaxStars = 12
)

// Mask keeps at most four leading characters of s, and never more than
// half of it, and replaces the rest with asterisks.
func Mask(s string) string {
	n := utf8.RuneCountInString(s)
	keep := excerptPrefix
	if n/2 < keep {
		keep = n / 2
	}
	stars := n - keep
	if stars > excerptMaxStars {
		stars = excerptMaxStars
	}
	if stars < 1 {
		stars = 1
	}
	runes := []rune(s)
	return string(runes[:keep]) + strings.Repeat("*", stars)
}

// Scanner applies a Catalog to staged files.
type Scanner struct {
	catalog  *Catalog
	extended LineDetector
	logger   *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtended adds a secondary detector whose hits are reported at High
// after the catalog's hits on the same line.
func WithExtended(d LineDetector) Option {
	return func(s *Scanner) { s.extended = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScanner returns a scanner over catalog.
func NewScanner(catalog *Catalog, opts ...Option) *Scanner {
	s := &Scanner{catalog: catalog, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Scan returns findings in file order, then line order, then catalog order.
// Ignored and binary files are skipped. If ctx is cancelled between files the
// findings collected so far are returned with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, files []model.StagedFile, ignore PathMatcher) ([]Finding, error) {
	var findings []Finding
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return findings, err
		}
		if ignore != nil && ignore.Match(f.Path) {
			s.logger.Debug("skipping ignored file", zap.String("file", f.Path))
			continue
		}
		if f.Binary {
			continue
		}
		findings = append(findings, s.ScanFile(f)...)
	}
	return findings, nil
}

// ScanFile scans a single file regardless of ignore rules.
func (s *Scanner) ScanFile(f model.StagedFile) []Finding {
	var out []Finding
	for i, line := range f.Lines() {
		for _, r := range s.catalog.rules {
			loc := r.Pattern.FindStringIndex(line)
			if loc == nil {
				continue
			}
			out = append(out, Finding{
				Rule:     r.Name,
				Severity: r.Severity,
				File:     f.Path,
				Line:     i + 1,
				Column:   utf8.RuneCountInString(line[:loc[0]]) + 1,
				Excerpt:  Mask(line[loc[0]:loc[1]]),
			})
		}
		if s.extended == nil {
			continue
		}
		matches := s.extended.DetectLine(line)
		sort.SliceStable(matches, func(a, b int) bool {
			if matches[a].Column != matches[b].Column {
				return matches[a].Column < matches[b].Column
			}
			return matches[a].Rule < matches[b].Rule
		})
		for _, m := range matches {
			out = append(out, Finding{
				Rule:     m.Rule,
				Severity: model.SeverityHigh,
				File:     f.Path,
				Line:     i + 1,
				Column:   m.Column,
				Excerpt:  Mask(m.Text),
			})
		}
	}
	return out
}
