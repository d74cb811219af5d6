package review

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aezell/nodpts/internal/diff"
)

// MaxDiffChars caps the diff embedded in the prompt.
const MaxDiffChars = 15000

const systemPrompt = `Act as a Senior Code Reviewer with expertise in security and best practices.

Analyze the Git diff you are given for:
1. Logic bugs or errors
2. Security vulnerabilities (SQL injection, XSS, auth issues, etc.)
3. Code smells (dead code, duplication, poor naming, etc.)
4. Performance issues
5. Best practice violations

Your response MUST start with exactly one of these lines:
RESULT: PASS
RESULT: REJECT

Use PASS when the change is acceptable, possibly with minor suggestions.
Use REJECT when the change has critical issues that must be fixed.
After the RESULT line, briefly explain your reasoning.
Values shown as a few characters followed by asterisks were redacted before review.`

// SystemPrompt returns the fixed instruction sent with every review.
func SystemPrompt() string { return systemPrompt }

// BuildPrompt returns the user message for raw. redact, when non-nil, is
// applied before truncation.
func BuildPrompt(raw string, redact func(string) string) string {
	var sb strings.Builder
	if ds, err := diff.Parse(raw); err == nil {
		files, added, deleted := ds.Stats()
		fmt.Fprintf(&sb, "Staged changes: %d file(s), +%d -%d\n", files, added, deleted)
		for _, f := range ds.Files {
			fmt.Fprintf(&sb, "  %s (+%d -%d)\n", f.Name(), f.AddedLines, f.DeletedLines)
		}
		sb.WriteString("\n")
	}

	if redact != nil {
		raw = redact(raw)
	}
	body, omitted := truncate(raw, MaxDiffChars)

	sb.WriteString("Here is the diff to review:\n\n```diff\n")
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	if omitted > 0 {
		fmt.Fprintf(&sb, "\n... [diff truncated, %d characters omitted] ...\n", omitted)
	}
	sb.WriteString("```\n")
	return sb.String()
}

// truncate cuts s to at most n characters and reports how many were cut.
func truncate(s string, n int) (string, int) {
	total := utf8.RuneCountInString(s)
	if total <= n {
		return s, 0
	}
	i, count := 0, 0
	for i = range s {
		if count == n {
			break
		}
		count++
	}
	return s[:i], total - n
}
