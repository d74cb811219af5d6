// Package report renders check reports and the rule catalog.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aezell/nodpts/internal/check"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts text, json, markdown and md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or markdown)", s)
	}
}

// Write renders r in format f.
func Write(w io.Writer, f Format, r *check.Report) error {
	switch f {
	case FormatJSON:
		return JSON(w, r)
	case FormatMarkdown:
		return Markdown(w, r)
	default:
		return Text(w, r)
	}
}

// JSON writes r as indented JSON.
func JSON(w io.Writer, r *check.Report) error {
	type jsonReport struct {
		*check.Report
		ExitCode int `json:"exit_code"`
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Report: r, ExitCode: r.Verdict.ExitCode()})
}
