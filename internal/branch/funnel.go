package branch

// Stage names the funnel step that produced a candidate set.
type Stage string

const (
	StageFullMatch    Stage = "full_match"
	StagePartialMatch Stage = "partial_match"
	StageUnfiltered   Stage = "unfiltered"
)

// Funnel rationales returned to the customer when the advisor gives no explanation.
const (
	RationaleFullMatch    = "All of your preferences are fully satisfied by the recommended branch."
	RationalePartialMatch = "No branch satisfies every preference, so branches matching at least one of them were considered."
	RationaleUnfiltered   = "No branch matches your specific preferences, so every eligible branch was considered."
)

type strategy struct {
	stage     Stage
	rationale string
	keep      func(Location, []Criterion) bool
}

// funnel is evaluated in order; the first strategy with a non-empty result wins.
var funnel = []strategy{
	{StageFullMatch, RationaleFullMatch, MatchesAll},
	{StagePartialMatch, RationalePartialMatch, MatchesAny},
	{StageUnfiltered, RationaleUnfiltered, func(Location, []Criterion) bool { return true }},
}

// Selection is the funnel output.
type Selection struct {
	Candidates []Location
	Stage      Stage
	Rationale  string
}

// SelectCandidates narrows the eligible set by progressively relaxing the
// preference filter. The result is empty only when eligible is empty.
func SelectCandidates(eligible []Location, priorities []Criterion) Selection {
	for _, s := range funnel {
		var kept []Location
		for _, loc := range eligible {
			if s.keep(loc, priorities) {
				kept = append(kept, loc)
			}
		}
		if len(kept) > 0 {
			return Selection{Candidates: kept, Stage: s.stage, Rationale: s.rationale}
		}
	}
	last := funnel[len(funnel)-1]
	return Selection{Stage: last.stage, Rationale: last.rationale}
}
