// Package scoring ranks candidate branches by distance, preference matches
// and preference order.
package scoring

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/branchmove/branch-service/internal/branch"
)

// Breakdown holds the individual score components.
type Breakdown struct {
	Distance      float64 `json:"distance"`
	Criteria      float64 `json:"criteria"`
	PriorityBonus float64 `json:"priorityBonus"`
}

// Scored is a candidate with its total score and breakdown.
type Scored struct {
	Annotated
	Score     float64            `json:"score"`
	Breakdown Breakdown          `json:"breakdown"`
	Matched   []branch.Criterion `json:"matched"`
}

// Engine scores and ranks candidates. It holds no per-request state and is
// safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger
}

// NewEngine creates a scoring engine. A nil config uses Defaults.
func NewEngine(config *Config, logger zerolog.Logger) *Engine {
	if config == nil {
		config = Defaults()
	}
	return &Engine{
		config: config,
		logger: logger.With().Str("component", "scoring_engine").Logger(),
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// DistanceScore interpolates linearly from the full distance weight at 0 km
// down to 0 at MaxDistanceKm.
func (e *Engine) DistanceScore(km float64) float64 {
	if km <= 0 {
		return e.config.DistanceWeight
	}
	if km >= e.config.MaxDistanceKm {
		return 0
	}
	return e.config.DistanceWeight * (1 - km/e.config.MaxDistanceKm)
}

// CriteriaScore scales the criteria weight by the share of satisfied
// priorities. With no priorities the axis is neutral at half weight.
func (e *Engine) CriteriaScore(loc branch.Location, priorities []branch.Criterion) float64 {
	if len(priorities) == 0 {
		return e.config.CriteriaWeight / 2
	}
	matched := branch.CountMatches(loc, priorities)
	return float64(matched) / float64(len(priorities)) * e.config.CriteriaWeight
}

// PriorityBonus sums the positional bonuses of satisfied priorities within
// the first BonusPositions entries.
func (e *Engine) PriorityBonus(loc branch.Location, priorities []branch.Criterion) float64 {
	var bonus float64
	for i, c := range priorities {
		if i >= len(e.config.PriorityBonuses) {
			break
		}
		if matched, _ := c.Evaluate(loc); matched {
			bonus += e.config.PriorityBonuses[i]
		}
	}
	return bonus
}

// Score computes the total score for one candidate.
func (e *Engine) Score(a Annotated, priorities []branch.Criterion) Scored {
	bd := Breakdown{
		Distance:      e.DistanceScore(a.DistanceKm),
		Criteria:      e.CriteriaScore(a.Location, priorities),
		PriorityBonus: e.PriorityBonus(a.Location, priorities),
	}
	return Scored{
		Annotated: a,
		Score:     bd.Distance + bd.Criteria + bd.PriorityBonus,
		Breakdown: bd,
		Matched:   branch.MatchedCriteria(a.Location, priorities),
	}
}

// Rank scores every candidate and orders them by descending score. Scores
// within ScoreTolerance of each other are ordered by ascending distance.
func (e *Engine) Rank(candidates []Annotated, priorities []branch.Criterion) []Scored {
	ranked := make([]Scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = e.Score(c, priorities)
	}

	tol := e.config.ScoreTolerance
	sort.SliceStable(ranked, func(i, j int) bool {
		if math.Abs(ranked[i].Score-ranked[j].Score) < tol {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Top returns at most TopK entries of an already ranked slice.
func (e *Engine) Top(ranked []Scored) []Scored {
	if len(ranked) <= e.config.TopK {
		return ranked
	}
	return ranked[:e.config.TopK]
}

// SelectTop ranks the candidates and keeps the TopK best.
func (e *Engine) SelectTop(candidates []Annotated, priorities []branch.Criterion) []Scored {
	top := e.Top(e.Rank(candidates, priorities))
	e.logDistribution(top)
	return top
}

// IsVeryFar reports whether km exceeds the very-far threshold.
func (e *Engine) IsVeryFar(km float64) bool {
	return km > e.config.VeryFarKm
}

func (e *Engine) logDistribution(top []Scored) {
	if e.logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	for i, s := range top {
		e.logger.Debug().
			Int("rank", i+1).
			Str("branch", s.Name).
			Float64("distance_km", s.DistanceKm).
			Float64("score", s.Score).
			Float64("distance_score", s.Breakdown.Distance).
			Float64("criteria_score", s.Breakdown.Criteria).
			Float64("priority_bonus", s.Breakdown.PriorityBonus).
			Msg("Candidate score")
	}
}
