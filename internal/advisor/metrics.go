package advisor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// recommendationsTotal counts finished requests by outcome.
	recommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisor_recommendations_total",
		Help: "Total number of recommendation requests by outcome",
	}, []string{"outcome"}) // outcome: advised, degraded, not_found, data_source_error, canceled

	recommendationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "advisor_recommendation_duration_seconds",
		Help:    "End-to-end recommendation latency by outcome",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"outcome"})

	funnelStageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisor_funnel_stage_total",
		Help: "Funnel stage that produced the candidate set",
	}, []string{"stage"})

	candidatesCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "advisor_candidates_count",
		Help:    "Number of funnel candidates before top-K selection",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	generatorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "advisor_generator_duration_seconds",
		Help:    "Time spent waiting for the text generator",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider"})

	// fallbackTotal tracks why requests took the distance-only path.
	fallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisor_fallback_total",
		Help: "Total number of degraded recommendations by reason",
	}, []string{"reason"})

	nearestDistanceKm = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "advisor_nearest_distance_km",
		Help:    "Distance from the current location to the nearest recommended candidate",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 50, 100},
	})
)

const (
	outcomeAdvised         = "advised"
	outcomeDegraded        = "degraded"
	outcomeNotFound        = "not_found"
	outcomeDataSourceError = "data_source_error"
	outcomeCanceled        = "canceled"
)

const (
	reasonNoCandidates   = "no_candidates"
	reasonTimeout        = "timeout"
	reasonGeneratorError = "generator_error"
	reasonEmptyPick      = "empty_pick"
	reasonUnknownPick    = "unknown_pick"
)
