package advisor

import (
	"regexp"
	"strings"

	"github.com/branchmove/branch-service/internal/branch"
	"github.com/branchmove/branch-service/internal/scoring"
)

var (
	explanationDelimiter = regexp.MustCompile(`(?i)\s*EXPLANATION\s*:\s*`)
	listMarker           = regexp.MustCompile(`^(\d+[.)]|[-•])\s*`)
)

// ParseResponse splits generator output into the picked name and its
// explanation. Emphasis markers are stripped; without the delimiter the
// explanation is empty.
func ParseResponse(text string) (pick, explanation string) {
	cleaned := strings.ReplaceAll(text, "**", "")
	cleaned = strings.ReplaceAll(cleaned, "*", "")

	parts := explanationDelimiter.Split(cleaned, -1)
	pick = strings.TrimSpace(parts[0])
	explanation = strings.TrimSpace(strings.Join(parts[1:], " "))
	return pick, explanation
}

// resolvePick maps a parsed pick onto one of the candidates. A line equal to
// a candidate name (ignoring case, list markers and surrounding punctuation)
// wins; otherwise the longest candidate name contained in the pick is used.
func resolvePick(pick string, candidates []scoring.Scored) (scoring.Scored, bool) {
	pick = branch.NormalizeName(pick)
	if pick == "" {
		return scoring.Scored{}, false
	}

	for _, line := range strings.Split(pick, "\n") {
		line = listMarker.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.Trim(line, " .,:;!\"'`")
		for _, c := range candidates {
			if strings.EqualFold(line, c.Name) {
				return c, true
			}
		}
	}

	lower := strings.ToLower(pick)
	var (
		best  scoring.Scored
		found bool
	)
	for _, c := range candidates {
		if strings.Contains(lower, strings.ToLower(c.Name)) && len(c.Name) > len(best.Name) {
			best, found = c, true
		}
	}
	return best, found
}
