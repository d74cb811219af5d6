package secrets

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// GitleaksPrefix is prepended to rule ids reported by the extended detector.
const GitleaksPrefix = "gitleaks:"

// Gitleaks runs the gitleaks default rule set one line at a time.
type Gitleaks struct {
	mu       sync.Mutex
	detector *detect.Detector
}

// NewGitleaks loads the gitleaks default configuration.
func NewGitleaks() (*Gitleaks, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("loading gitleaks rules: %w", err)
	}
	return &Gitleaks{detector: d}, nil
}

// DetectLine implements LineDetector.
func (g *Gitleaks) DetectLine(line string) []LineMatch {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	g.mu.Lock()
	found := g.detector.DetectString(line)
	g.mu.Unlock()

	out := make([]LineMatch, 0, len(found))
	for _, f := range found {
		text := f.Secret
		if text == "" {
			text = f.Match
		}
		col := 1
		if idx := strings.Index(line, text); idx >= 0 {
			col = utf8.RuneCountInString(line[:idx]) + 1
		}
		out = append(out, LineMatch{Rule: GitleaksPrefix + f.RuleID, Column: col, Text: text})
	}
	return out
}
