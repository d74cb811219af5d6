package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aezell/nodpts/internal/check"
	"github.com/aezell/nodpts/internal/lint"
)

// Markdown writes r as a Markdown document suitable for CI summaries.
func Markdown(w io.Writer, r *check.Report) error {
	p := &printer{w: w}

	p.line("## nodpts check: " + strings.ToUpper(r.Verdict.String()))
	p.line("")
	if r.Bypassed {
		p.line("Bypass token consumed; all checks skipped.")
		return p.err
	}
	p.line(fmt.Sprintf("**%d** staged file(s), **%d** ignored, **%d** finding(s)", r.StagedCount, r.IgnoredCount, len(r.Findings)))
	p.line("")

	if len(r.Reasons) > 0 {
		for _, reason := range r.Reasons {
			p.line("- " + reason)
		}
		p.line("")
	}

	if len(r.Findings) > 0 {
		p.line("### Secrets")
		p.line("")
		p.line("| Severity | Rule | Location | Excerpt |")
		p.line("|----------|------|----------|---------|")
		for _, sev := range severities {
			for _, f := range bySeverity(r.Findings, sev) {
				p.line(fmt.Sprintf("| %s | %s | `%s:%d` | `%s` |", f.Severity, f.Rule, f.File, f.Line, f.Excerpt))
			}
		}
		p.line("")
	}

	var lintRows []lint.Result
	for _, l := range r.LintResults {
		if l.Outcome == lint.Failed || (l.Outcome == lint.Skipped && !l.Exempt()) {
			lintRows = append(lintRows, l)
		}
	}
	if len(lintRows) > 0 {
		p.line("### Lint")
		p.line("")
		p.line("| File | Linter | Outcome | Detail |")
		p.line("|------|--------|---------|--------|")
		for _, l := range lintRows {
			detail := l.Reason
			if l.Outcome == lint.Failed {
				detail = strings.Join(l.Diagnostics, "<br>")
			}
			p.line(fmt.Sprintf("| `%s` | %s | %s | %s |", l.File, l.Linter, l.Outcome, escapePipes(detail)))
		}
		p.line("")
	}

	if v := r.Review; v != nil {
		p.line("### AI review")
		p.line("")
		status := v.Outcome.String()
		if v.Reason != "" {
			status += ": " + v.Reason
		}
		p.line("**" + status + "**")
		if v.Rationale != "" {
			p.line("")
			p.line(v.Rationale)
		}
		p.line("")
	}

	for _, c := range r.Checkers {
		if c.State != check.StateOK {
			p.line(fmt.Sprintf("> %s checker %s: %s", c.Name, c.State, c.Detail))
		}
	}
	return p.err
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
