package branch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureBranches() []Location {
	return []Location{
		{Name: "Current", Region: "Ankara", ATMCount: 1, Parking: true},
		{Name: "North", Region: "Ankara", ATMCount: 2, Parking: true},
		{Name: "South", Region: "Ankara", ATMCount: 6, Parking: true},
		{Name: "East", Region: "Ankara", ATMCount: 8, Parking: false},
		{Name: "Border", Region: "Konya", ServesAdjacentRegions: true, ATMCount: 1},
		{Name: "Remote", Region: "Izmir", ATMCount: 1, Parking: true},
	}
}

func names(locs []Location) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.Name
	}
	return out
}

func TestEligible(t *testing.T) {
	eligible := Eligible(fixtureBranches(), "Ankara", "Current")

	assert.Equal(t, []string{"North", "South", "East", "Border"}, names(eligible))
}

func TestEligibleExcludesCurrentEvenWhenAdjacent(t *testing.T) {
	all := []Location{
		{Name: "Current", Region: "Konya", ServesAdjacentRegions: true},
		{Name: "Other", Region: "Konya", ServesAdjacentRegions: true},
	}

	assert.Equal(t, []string{"Other"}, names(Eligible(all, "Ankara", "Current")))
}

func TestEligibleEmptyInput(t *testing.T) {
	assert.Empty(t, Eligible(nil, "Ankara", "Current"))
}

func TestInRegion(t *testing.T) {
	assert.Equal(t, []string{"Current", "North", "South", "East"}, names(InRegion(fixtureBranches(), "Ankara")))
	assert.Empty(t, InRegion(fixtureBranches(), "Bursa"))
}

func TestSelectCandidatesStages(t *testing.T) {
	eligible := Eligible(fixtureBranches(), "Ankara", "Current")

	tests := []struct {
		name      string
		criteria  []Criterion
		stage     Stage
		rationale string
		want      []string
	}{
		{
			name:      "full match wins",
			criteria:  []Criterion{LowATMDensity, ParkingAvailable},
			stage:     StageFullMatch,
			rationale: RationaleFullMatch,
			want:      []string{"North"},
		},
		{
			name:      "partial match when nothing matches all",
			criteria:  []Criterion{LowATMDensity, ExtendedHours},
			stage:     StagePartialMatch,
			rationale: RationalePartialMatch,
			want:      []string{"North", "Border"},
		},
		{
			name:      "unfiltered when nothing matches any",
			criteria:  []Criterion{ExtendedHours, CorporateBanking},
			stage:     StageUnfiltered,
			rationale: RationaleUnfiltered,
			want:      []string{"North", "South", "East", "Border"},
		},
		{
			name:      "empty priorities keep everything as full match",
			criteria:  nil,
			stage:     StageFullMatch,
			rationale: RationaleFullMatch,
			want:      []string{"North", "South", "East", "Border"},
		},
		{
			name:      "unknown criterion alone passes every branch as full match",
			criteria:  []Criterion{"Drive Through"},
			stage:     StageFullMatch,
			rationale: RationaleFullMatch,
			want:      []string{"North", "South", "East", "Border"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := SelectCandidates(eligible, tt.criteria)
			assert.Equal(t, tt.stage, sel.Stage)
			assert.Equal(t, tt.rationale, sel.Rationale)
			assert.Equal(t, tt.want, names(sel.Candidates))
		})
	}
}

func TestSelectCandidatesFullMatchIsExactSubset(t *testing.T) {
	eligible := Eligible(fixtureBranches(), "Ankara", "Current")
	criteria := []Criterion{ParkingAvailable}

	sel := SelectCandidates(eligible, criteria)
	require.Equal(t, StageFullMatch, sel.Stage)

	for _, loc := range eligible {
		inSelection := false
		for _, c := range sel.Candidates {
			if c.Name == loc.Name {
				inSelection = true
			}
		}
		assert.Equal(t, MatchesAll(loc, criteria), inSelection, loc.Name)
	}
}

func TestSelectCandidatesEmptyEligible(t *testing.T) {
	sel := SelectCandidates(nil, []Criterion{LowATMDensity})

	assert.Empty(t, sel.Candidates)
	assert.Equal(t, StageUnfiltered, sel.Stage)
	assert.Equal(t, RationaleUnfiltered, sel.Rationale)
}
