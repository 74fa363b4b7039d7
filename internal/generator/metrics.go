package generator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// breakerState tracks the circuit breaker state per provider (0 closed, 1 open, 2 half-open).
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "generator_circuit_breaker_state",
		Help: "Circuit breaker state by provider (0 closed, 1 open, 2 half-open)",
	}, []string{"provider"})

	// cacheLookups tracks response cache lookups by result.
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generator_cache_lookups_total",
		Help: "Total number of response cache lookups by provider and result",
	}, []string{"provider", "result"}) // result: hit, miss, error
)
