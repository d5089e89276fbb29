package challenge

import (
	"regexp"
	"strconv"
	"strings"
)

// Topic titles like "Wake at 4 / 40 days" carry the challenge duration.
// The suffix word is optional and also matches the Russian "дней"/"дня"
// seen in real topic names.
var titlePattern = regexp.MustCompile(`(?i)^(.+?)\s*/\s*(\d+)\s*(дн(?:ей|я)|days)?`)

// ParseTitleHint extracts (title, totalDays) from a topic title hint.
// When the "<title> / <N> days" shape does not match, the trimmed hint is
// returned as the title with totalDays 0.
func ParseTitleHint(hint string) (string, int) {
	cleaned := strings.TrimSpace(hint)
	if cleaned == "" {
		return "", 0
	}

	m := titlePattern.FindStringSubmatch(cleaned)
	if m == nil {
		return cleaned, 0
	}

	totalDays, err := strconv.Atoi(m[2])
	if err != nil || totalDays < 1 {
		return cleaned, 0
	}
	return strings.TrimSpace(m[1]), totalDays
}
