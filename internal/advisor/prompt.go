package advisor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/branchmove/branch-service/internal/branch"
	"github.com/branchmove/branch-service/internal/scoring"
)

// PromptInput is everything the advisory prompt is assembled from.
type PromptInput struct {
	Current    branch.Location
	Region     string
	Priorities []branch.Criterion
	Candidates []scoring.Scored
	// Nearest is the minimum-distance entry of Candidates, nil when empty.
	Nearest *scoring.Scored
	// IsVeryFar flags candidate distances; nil flags none.
	IsVeryFar func(km float64) bool
	// VeryFarKm is the threshold quoted in the rules; 0 omits it.
	VeryFarKm float64
}

var priorityLabels = []string{"1st PRIORITY", "2nd PRIORITY", "3rd PRIORITY", "4th PRIORITY"}

// BuildPrompt renders the advisory request text.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("## CUSTOMER PROFILE\n")
	writeProfile(&b, in.Current, in.Region)

	b.WriteString("\n## PREFERENCE PRIORITY ORDER (most important first)\n")
	writePriorities(&b, in.Priorities)

	fmt.Fprintf(&b, "\n## TOP %d CANDIDATE BRANCHES (selected by preference filtering and scoring)\n", len(in.Candidates))
	for i, c := range in.Candidates {
		if i > 0 {
			b.WriteString("\n")
		}
		writeCandidate(&b, i+1, c, in.IsVeryFar)
	}

	b.WriteString("\n")
	writeNearestNote(&b, len(in.Candidates), in.Nearest)

	b.WriteString("\n## TASK\n")
	fmt.Fprintf(&b, "From the %d candidates above only (not from all branches), choose exactly ONE branch that best fits the customer's preference priority order.\n", len(in.Candidates))

	b.WriteString("\n### RULES\n")
	writeRules(&b, in.VeryFarKm)

	b.WriteString("\n### RESPONSE FORMAT (follow strictly)\n")
	b.WriteString("BRANCH_NAME\n")
	b.WriteString("EXPLANATION: [ONE short sentence, at most 15-20 words, naming which priorities it satisfies]\n")
	b.WriteString("\nEXAMPLE:\n")
	b.WriteString(exampleName(in.Candidates) + "\n")
	b.WriteString("EXPLANATION: It offers parking and low customer density, your top priorities, and is among the closest candidates.")

	return b.String()
}

func writeProfile(b *strings.Builder, current branch.Location, region string) {
	fmt.Fprintf(b, "- Current branch: %s\n", current.Name)
	fmt.Fprintf(b, "- Target region: %s\n", region)
	if current.SubRegion != "" {
		fmt.Fprintf(b, "- Current location: %s / %s\n", current.Region, current.SubRegion)
	} else {
		fmt.Fprintf(b, "- Current location: %s\n", current.Region)
	}
	fmt.Fprintf(b, "- Coordinates: %s, %s\n", formatCoord(current.Coordinate.Lat), formatCoord(current.Coordinate.Lon))
}

func writePriorities(b *strings.Builder, priorities []branch.Criterion) {
	if len(priorities) == 0 {
		b.WriteString("The customer stated no specific preference (all branches are weighed equally on criteria).\n")
		return
	}
	for i, p := range priorities {
		label := strconv.Itoa(i+1) + "th PRIORITY"
		if i < len(priorityLabels) {
			label = priorityLabels[i]
		}
		fmt.Fprintf(b, "%s: %s\n", label, p)
	}
}

func writeCandidate(b *strings.Builder, n int, c scoring.Scored, isVeryFar func(float64) bool) {
	fmt.Fprintf(b, "%d. %s\n", n, c.Name)
	if c.SubRegion != "" {
		fmt.Fprintf(b, "   - Location: %s / %s\n", c.Region, c.SubRegion)
	} else {
		fmt.Fprintf(b, "   - Location: %s\n", c.Region)
	}
	distance := fmt.Sprintf("%.1f km", c.DistanceKm)
	if isVeryFar != nil && isVeryFar(c.DistanceKm) {
		distance += " (very far)"
	}
	fmt.Fprintf(b, "   - Distance: %s\n", distance)
	if c.Type != "" {
		fmt.Fprintf(b, "   - Type: %s\n", c.Type)
	}
	services := "none listed"
	if len(c.ServiceTypes) > 0 {
		services = strings.Join(c.ServiceNames(), ", ")
	}
	fmt.Fprintf(b, "   - Service types: %s\n", services)
	b.WriteString("   - Features:\n")
	fmt.Fprintf(b, "     * ATM count: %d\n", c.ATMCount)
	fmt.Fprintf(b, "     * Density: %s\n", c.Density)
	fmt.Fprintf(b, "     * Accessibility: %s\n", yesNo(c.Accessible))
	fmt.Fprintf(b, "     * Parking: %s\n", yesNo(c.Parking))
	fmt.Fprintf(b, "     * Extended hours: %s\n", yesNo(c.ExtendedHours))
	fmt.Fprintf(b, "     * Easy access: %s\n", yesNo(c.EasyAccess))
	fmt.Fprintf(b, "   - Fit score: %.1f (distance: %.1f, criteria: %.1f, priority bonus: %.1f)\n",
		c.Score, c.Breakdown.Distance, c.Breakdown.Criteria, c.Breakdown.PriorityBonus)
}

func writeNearestNote(b *strings.Builder, count int, nearest *scoring.Scored) {
	if nearest == nil {
		b.WriteString("NOTE: The branches above were pre-filtered by the customer's preferences.\n")
		return
	}
	fmt.Fprintf(b, "NOTE: The %d branches above were pre-filtered from all branches by the customer's preferences. "+
		"More branches exist but they fit the preferences less well. The nearest of these %d candidates is %s (%.1f km).\n",
		count, count, nearest.Name, nearest.DistanceKm)
}

func writeRules(b *strings.Builder, veryFarKm float64) {
	b.WriteString("1. The 1st priority matters most: the customer's first preference must come first.\n")
	b.WriteString("2. Priority order is essential: weigh the 2nd, 3rd and 4th preferences in that order.\n")
	if veryFarKm > 0 {
		fmt.Fprintf(b, "3. Distance is a factor but not the only one: very far branches (>%s km) are at a disadvantage, yet being close is not enough on its own.\n", strconv.FormatFloat(veryFarKm, 'f', -1, 64))
	} else {
		b.WriteString("3. Distance is a factor but not the only one: being close is not enough on its own.\n")
	}
	b.WriteString("4. Scores are guidance, not absolute: use them as a starting point and make your own assessment.\n")
	b.WriteString("5. Choose only a branch listed above and write its name exactly as listed.\n")
}

func exampleName(candidates []scoring.Scored) string {
	if len(candidates) > 0 {
		return candidates[0].Name
	}
	return "Harbor Branch"
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
