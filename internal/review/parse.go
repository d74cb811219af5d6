package review

import (
	"regexp"
	"strings"
)

var resultLine = regexp.MustCompile(`^RESULT:\s*(PASS|REJECT)$`)

// ParseResponse reads the verdict line of a model response. ok is false
// when the first non-blank line is not a well-formed RESULT line; such a
// response never counts as approval.
func ParseResponse(text string) (outcome Outcome, rationale string, ok bool) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		head := strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*`#"))
		m := resultLine.FindStringSubmatch(head)
		if m == nil {
			return Unavailable, "", false
		}
		rationale = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		if m[1] == "PASS" {
			return Approved, rationale, true
		}
		return Rejected, rationale, true
	}
	return Unavailable, "", false
}
