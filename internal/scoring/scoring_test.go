package scoring

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchmove/branch-service/internal/branch"
)

func newTestEngine() *Engine {
	return NewEngine(Defaults(), zerolog.Nop())
}

func candidate(name string, km float64, atm int, parking bool) Annotated {
	return Annotated{
		Location:   branch.Location{Name: name, ATMCount: atm, Parking: parking},
		DistanceKm: km,
	}
}

func TestDistanceScore(t *testing.T) {
	e := newTestEngine()

	assert.Equal(t, 30.0, e.DistanceScore(0))
	assert.Equal(t, 30.0, e.DistanceScore(-1))
	assert.Equal(t, 0.0, e.DistanceScore(50))
	assert.Equal(t, 0.0, e.DistanceScore(120))
	assert.InDelta(t, 15.0, e.DistanceScore(25), 1e-9)

	prev := e.DistanceScore(0)
	for km := 0.5; km <= 60; km += 0.5 {
		cur := e.DistanceScore(km)
		assert.LessOrEqual(t, cur, prev, "distance score must not increase at %v km", km)
		prev = cur
	}
}

func TestCriteriaScore(t *testing.T) {
	e := newTestEngine()
	loc := branch.Location{ATMCount: 1, Parking: false, Accessible: true}

	assert.Equal(t, 20.0, e.CriteriaScore(loc, nil))
	assert.Equal(t, 40.0, e.CriteriaScore(loc, []branch.Criterion{branch.LowATMDensity}))
	assert.InDelta(t, 26.667, e.CriteriaScore(loc, []branch.Criterion{
		branch.LowATMDensity, branch.ParkingAvailable, branch.Accessibility,
	}), 0.001)
	assert.Equal(t, 0.0, e.CriteriaScore(loc, []branch.Criterion{branch.ParkingAvailable}))
	assert.Equal(t, 20.0, e.CriteriaScore(loc, []branch.Criterion{branch.LowATMDensity, "Unknown"}))
}

func TestPriorityBonus(t *testing.T) {
	e := newTestEngine()
	loc := branch.Location{
		ATMCount:      1,
		Accessible:    true,
		Parking:       true,
		ExtendedHours: true,
		EasyAccess:    true,
	}

	all := []branch.Criterion{
		branch.LowATMDensity, branch.Accessibility, branch.ParkingAvailable,
		branch.ExtendedHours, branch.EasyAccess,
	}
	assert.Equal(t, 52.0, e.PriorityBonus(loc, all), "fifth position earns nothing")

	onlySecond := []branch.Criterion{branch.CorporateBanking, branch.Accessibility}
	assert.Equal(t, 15.0, e.PriorityBonus(loc, onlySecond))

	assert.Equal(t, 0.0, e.PriorityBonus(loc, nil))
}

func TestScoreUpperBound(t *testing.T) {
	e := newTestEngine()
	loc := branch.Location{ATMCount: 0, Accessible: true, Parking: true, ExtendedHours: true, EasyAccess: true}
	priorities := []branch.Criterion{
		branch.LowATMDensity, branch.Accessibility, branch.ParkingAvailable, branch.ExtendedHours,
	}

	s := e.Score(Annotated{Location: loc, DistanceKm: 0}, priorities)
	assert.Equal(t, e.Config().MaxScore(), s.Score)
	assert.Equal(t, 122.0, s.Score)
	assert.Equal(t, priorities, s.Matched)

	for _, km := range []float64{0, 3, 17, 49, 80} {
		got := e.Score(Annotated{Location: loc, DistanceKm: km}, priorities)
		assert.LessOrEqual(t, got.Score, e.Config().MaxScore())
		assert.InDelta(t, got.Score, got.Breakdown.Distance+got.Breakdown.Criteria+got.Breakdown.PriorityBonus, 1e-9)
	}
}

func TestRankToleranceTieBreak(t *testing.T) {
	e := newTestEngine()

	// 30*(1-10/50)=24 and 30*(1-10.5/50)=23.7: within tolerance
	farther := candidate("Farther", 10.5, 9, false)
	closer := candidate("Closer", 10, 9, false)

	ranked := e.Rank([]Annotated{farther, closer}, nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Closer", ranked[0].Name)

	wide := Defaults()
	wide.ScoreTolerance = 5
	e2 := NewEngine(wide, zerolog.Nop())

	// Eight priorities make each match worth 5 points; SME Banking sits past
	// the bonus positions.
	priorities := []branch.Criterion{
		branch.LowATMDensity, branch.ParkingAvailable, branch.Accessibility, branch.ExtendedHours,
		branch.EasyAccess, branch.SMEBanking, branch.CorporateBanking, branch.IndividualBanking,
	}
	higherFar := Annotated{
		Location:   branch.Location{Name: "HigherFar", ATMCount: 9, ServiceTypes: []branch.ServiceType{branch.ServiceSME}},
		DistanceKm: 10,
	}
	lowerNear := candidate("LowerNear", 9, 9, false)

	// HigherFar: 24+5=29, LowerNear: 24.6+0=24.6
	ranked = e2.Rank([]Annotated{higherFar, lowerNear}, priorities)
	require.Len(t, ranked, 2)
	assert.Greater(t, ranked[1].Score, ranked[0].Score)
	assert.Equal(t, "LowerNear", ranked[0].Name)

	ranked = e.Rank([]Annotated{lowerNear, higherFar}, priorities)
	assert.Equal(t, "HigherFar", ranked[0].Name)
}

func TestRankPriorityBeatsProximity(t *testing.T) {
	e := newTestEngine()
	priorities := []branch.Criterion{branch.LowATMDensity}

	candidates := []Annotated{
		candidate("Near", 5, 2, false),
		candidate("Middle", 20, 8, false),
		candidate("Far", 45, 1, false),
	}

	ranked := e.Rank(candidates, priorities)
	require.Len(t, ranked, 3)

	// Near: 27+40+20=87, Far: 3+40+20=63, Middle: 18+0+0=18
	assert.Equal(t, []string{"Near", "Far", "Middle"}, []string{ranked[0].Name, ranked[1].Name, ranked[2].Name})
	assert.InDelta(t, 87.0, ranked[0].Score, 1e-9)
	assert.InDelta(t, 63.0, ranked[1].Score, 1e-9)
	assert.InDelta(t, 18.0, ranked[2].Score, 1e-9)

	swapped := []Annotated{
		candidate("MatchingFarther", 20, 2, false),
		candidate("UnmatchedCloser", 5, 8, false),
	}
	ranked = e.Rank(swapped, priorities)
	// MatchingFarther: 18+40+20=78, UnmatchedCloser: 27+0+0=27
	assert.Equal(t, "MatchingFarther", ranked[0].Name)
}

func TestSelectTopLimitsToK(t *testing.T) {
	e := newTestEngine()

	var candidates []Annotated
	for i := 0; i < 8; i++ {
		candidates = append(candidates, candidate(string(rune('A'+i)), float64(i*5), 9, false))
	}

	top := e.SelectTop(candidates, nil)
	require.Len(t, top, 5)
	assert.Equal(t, "A", top[0].Name)
	assert.Equal(t, "E", top[4].Name)

	assert.Len(t, e.SelectTop(candidates[:2], nil), 2)
	assert.Empty(t, e.SelectTop(nil, nil))
}

func TestIsVeryFar(t *testing.T) {
	e := newTestEngine()
	assert.False(t, e.IsVeryFar(30))
	assert.True(t, e.IsVeryFar(30.1))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Defaults().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"weights do not sum to 100", func(c *Config) { c.DistanceWeight = 40 }, "weights"},
		{"negative weight", func(c *Config) { c.CriteriaWeight = -10; c.DistanceWeight = 80 }, "criteria_weight"},
		{"zero max distance", func(c *Config) { c.MaxDistanceKm = 0 }, "max_distance_km"},
		{"zero very far threshold", func(c *Config) { c.VeryFarKm = 0 }, "very_far_km"},
		{"short bonus table", func(c *Config) { c.PriorityBonuses = []float64{20, 15} }, "priority_bonuses"},
		{"ascending bonuses", func(c *Config) { c.PriorityBonuses = []float64{5, 10, 15, 20} }, "priority_bonuses"},
		{"negative tolerance", func(c *Config) { c.ScoreTolerance = -1 }, "score_tolerance"},
		{"zero top k", func(c *Config) { c.TopK = 0 }, "top_k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr ErrInvalidConfig
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
