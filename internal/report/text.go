package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aezell/nodpts/internal/check"
	"github.com/aezell/nodpts/internal/lint"
	"github.com/aezell/nodpts/internal/model"
	"github.com/aezell/nodpts/internal/review"
	"github.com/aezell/nodpts/internal/secrets"
)

var severities = []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow}

// Text writes a human-readable report: findings grouped by severity, lint
// problems, the AI verdict, checker degradations and the final verdict.
func Text(w io.Writer, r *check.Report) error {
	s := newStyles(w)
	p := &printer{w: w}

	switch {
	case r.Bypassed:
		p.line(s.warn.Render("⚡ Bypass token consumed: all checks skipped for this commit."))
		p.verdict(s, r)
		return p.err
	case r.StagedCount == 0:
		p.line(s.dim.Render("No staged files."))
		p.verdict(s, r)
		return p.err
	}

	summary := fmt.Sprintf("%d staged file(s)", r.StagedCount)
	if r.IgnoredCount > 0 {
		summary += fmt.Sprintf(", %d ignored", r.IgnoredCount)
	}
	p.line(s.dim.Render(summary))
	p.line("")

	p.line(s.header.Render("Secrets"))
	if len(r.Findings) == 0 {
		p.line("  No secrets found.")
	}
	for _, sev := range severities {
		group := bySeverity(r.Findings, sev)
		if len(group) == 0 {
			continue
		}
		st := s.severity(sev)
		p.line("  " + st.Render(fmt.Sprintf("%s %s (%d)", severityIcon(sev), strings.ToUpper(sev.String()), len(group))))
		for _, f := range group {
			p.line(fmt.Sprintf("    [%s] %s %s", f.Rule, s.file.Render(fmt.Sprintf("%s:%d:%d", f.File, f.Line, f.Column)), s.dim.Render(f.Excerpt)))
		}
	}
	p.line("")

	p.line(s.header.Render("Lint"))
	var passed, exempt int
	for _, l := range r.LintResults {
		switch {
		case l.Outcome == lint.Passed:
			passed++
		case l.Exempt():
			exempt++
		case l.Outcome == lint.Failed:
			p.line(fmt.Sprintf("  %s %s (%s)", s.fail.Render("✗"), s.file.Render(l.File), l.Linter))
			for _, d := range l.Diagnostics {
				p.line("      " + d)
			}
		default:
			p.line(fmt.Sprintf("  %s %s skipped: %s", s.warn.Render("–"), s.file.Render(l.File), l.Reason))
			for _, d := range l.Diagnostics {
				p.line("      " + s.dim.Render(d))
			}
		}
	}
	p.line(s.dim.Render(fmt.Sprintf("  %d passed, %d not applicable", passed, exempt)))
	p.line("")

	if v := r.Review; v != nil {
		p.line(s.header.Render("AI review"))
		p.line("  " + reviewLine(s, v))
		if v.Rationale != "" {
			p.line(s.rationale.Render(v.Rationale))
		}
		p.line("")
	}

	for _, c := range r.Checkers {
		if c.State == check.StateOK {
			continue
		}
		p.line(s.warn.Render(fmt.Sprintf("⚠ %s checker %s: %s", c.Name, c.State, c.Detail)))
	}

	p.verdict(s, r)
	return p.err
}

func reviewLine(s styles, v *review.Verdict) string {
	switch v.Outcome {
	case review.Approved:
		return s.pass.Render("✓ approved") + s.dim.Render(" ("+v.Model+")")
	case review.Rejected:
		return s.fail.Render("✗ rejected") + s.dim.Render(" ("+v.Model+")")
	default:
		line := s.warn.Render("– unavailable: " + v.Reason)
		if v.Detail != "" {
			line += s.dim.Render(" (" + v.Detail + ")")
		}
		return line
	}
}

func bySeverity(findings []secrets.Finding, sev model.Severity) []secrets.Finding {
	var out []secrets.Finding
	for _, f := range findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) verdict(s styles, r *check.Report) {
	if r.Verdict == model.VerdictFail {
		p.line(s.fail.Render(fmt.Sprintf("✗ FAIL (exit %d)", r.Verdict.ExitCode())))
		for _, reason := range r.Reasons {
			p.line("  - " + reason)
		}
		return
	}
	p.line(s.pass.Render(fmt.Sprintf("✓ PASS (exit %d)", r.Verdict.ExitCode())))
}
