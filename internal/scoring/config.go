package scoring

import "math"

// Config holds the scoring weights and ranking settings.
type Config struct {
	// Component weights; must sum to 100
	DistanceWeight float64 `mapstructure:"distance_weight" env:"DISTANCE_WEIGHT" default:"30"`
	CriteriaWeight float64 `mapstructure:"criteria_weight" env:"CRITERIA_WEIGHT" default:"40"`
	PriorityWeight float64 `mapstructure:"priority_weight" env:"PRIORITY_WEIGHT" default:"30"`

	// Distance at which the distance component reaches zero
	MaxDistanceKm float64 `mapstructure:"max_distance_km" env:"MAX_DISTANCE_KM" default:"50"`

	// Distances above this are flagged as very far in advisory prompts
	VeryFarKm float64 `mapstructure:"very_far_km" env:"VERY_FAR_KM" default:"30"`

	// Bonus per priority position (must be descending, exactly 4 values)
	PriorityBonuses []float64 `mapstructure:"priority_bonuses" env:"PRIORITY_BONUSES" default:"[20,15,10,7]"`

	// Scores closer than this are ordered by distance
	ScoreTolerance float64 `mapstructure:"score_tolerance" env:"SCORE_TOLERANCE" default:"0.5"`

	// Number of ranked candidates kept
	TopK int `mapstructure:"top_k" env:"TOP_K" default:"5"`
}

// BonusPositions is the number of priority positions that earn a bonus.
const BonusPositions = 4

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		DistanceWeight:  30,
		CriteriaWeight:  40,
		PriorityWeight:  30,
		MaxDistanceKm:   50,
		VeryFarKm:       30,
		PriorityBonuses: []float64{20, 15, 10, 7},
		ScoreTolerance:  0.5,
		TopK:            5,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.DistanceWeight < 0 {
		return ErrInvalidConfig{Field: "distance_weight", Reason: "must be non-negative"}
	}
	if c.CriteriaWeight < 0 {
		return ErrInvalidConfig{Field: "criteria_weight", Reason: "must be non-negative"}
	}
	if c.PriorityWeight < 0 {
		return ErrInvalidConfig{Field: "priority_weight", Reason: "must be non-negative"}
	}
	if math.Abs(c.DistanceWeight+c.CriteriaWeight+c.PriorityWeight-100) > 1e-9 {
		return ErrInvalidConfig{Field: "weights", Reason: "distance, criteria and priority weights must sum to 100"}
	}
	if c.MaxDistanceKm <= 0 {
		return ErrInvalidConfig{Field: "max_distance_km", Reason: "must be positive"}
	}
	if c.VeryFarKm <= 0 {
		return ErrInvalidConfig{Field: "very_far_km", Reason: "must be positive"}
	}
	if len(c.PriorityBonuses) != BonusPositions {
		return ErrInvalidConfig{Field: "priority_bonuses", Reason: "must have exactly 4 values"}
	}
	for i, b := range c.PriorityBonuses {
		if b < 0 {
			return ErrInvalidConfig{Field: "priority_bonuses", Reason: "must be non-negative"}
		}
		if i > 0 && b > c.PriorityBonuses[i-1] {
			return ErrInvalidConfig{Field: "priority_bonuses", Reason: "must be in descending order"}
		}
	}
	if c.ScoreTolerance < 0 {
		return ErrInvalidConfig{Field: "score_tolerance", Reason: "must be non-negative"}
	}
	if c.TopK < 1 {
		return ErrInvalidConfig{Field: "top_k", Reason: "must be at least 1"}
	}
	return nil
}

// MaxScore is the highest total a candidate can reach under c.
func (c *Config) MaxScore() float64 {
	total := c.DistanceWeight + c.CriteriaWeight
	for _, b := range c.PriorityBonuses {
		total += b
	}
	return total
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
