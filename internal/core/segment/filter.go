package segment

import (
	"regexp"
	"strings"
)

var (
	rePageOfLine = regexp.MustCompile(`(?i)^\s*Page\s+\d+\s*/\s*\d+\s*$`)
	reBareNumber = regexp.MustCompile(`^\s*\d+\s*$`)
)

// filterHeadersFooters removes repeated per-page boilerplate line by line:
// "Page n / m" lines, standalone page numbers, and long contact-block lines
// carrying both a phone and an email label. Blank lines are preserved so
// paragraph boundary detection keeps working. Deliberately conservative;
// ambiguous short lines are left for paragraph-level classification.
func filterHeadersFooters(text string) string {
	lines := strings.Split(text, "\n")
	filtered := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			filtered = append(filtered, "")
			continue
		}
		if rePageOfLine.MatchString(line) || reBareNumber.MatchString(line) {
			continue
		}
		if strings.Contains(line, "Phone:") && strings.Contains(line, "Email:") && runeLen(line) > 100 {
			continue
		}
		filtered = append(filtered, line)
	}

	return strings.Join(filtered, "\n")
}
