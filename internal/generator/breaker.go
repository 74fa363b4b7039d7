package generator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CircuitBreakerState represents the state of the circuit breaker.
type CircuitBreakerState int

const (
	// CircuitClosed allows requests to pass through.
	CircuitClosed CircuitBreakerState = iota

	// CircuitOpen rejects requests immediately.
	CircuitOpen

	// CircuitHalfOpen allows trial requests to check if the provider has recovered.
	CircuitHalfOpen
)

// String returns the string representation of the circuit breaker state.
func (s CircuitBreakerState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker trips after consecutive provider failures so that requests
// go straight to the distance-only fallback instead of waiting on a dead upstream.
type CircuitBreaker struct {
	mu              sync.Mutex
	state           CircuitBreakerState
	failureCount    int
	successCount    int // used in half-open state
	inFlight        int // half-open trial calls without an outcome yet
	lastFailureTime time.Time
	config          BreakerConfig
	logger          zerolog.Logger
	name            string
	now             func() time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(name string, config BreakerConfig, logger zerolog.Logger) *CircuitBreaker {
	cb := &CircuitBreaker{
		state:  CircuitClosed,
		config: config,
		logger: logger,
		name:   name,
		now:    time.Now,
	}
	breakerState.WithLabelValues(name).Set(float64(CircuitClosed))
	return cb
}

// Allow returns true if the request should be allowed through the circuit breaker.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true

	case CircuitOpen:
		if cb.now().Sub(cb.lastFailureTime) >= cb.config.ResetTimeout {
			cb.transitionTo(CircuitHalfOpen)
			cb.successCount = 0
			cb.inFlight = 1
			cb.logger.Info().
				Str("circuit_breaker", cb.name).
				Msg("Circuit breaker transitioning to half-open")
			return true
		}
		return false

	case CircuitHalfOpen:
		if cb.successCount+cb.inFlight >= cb.config.HalfOpenMaxCalls {
			return false
		}
		cb.inFlight++
		return true

	default:
		return false
	}
}

// RecordSuccess records a successful operation.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failureCount = 0

	case CircuitHalfOpen:
		cb.releaseTrial()
		cb.successCount++
		if cb.successCount >= cb.config.HalfOpenMaxCalls {
			cb.transitionTo(CircuitClosed)
			cb.logger.Info().
				Str("circuit_breaker", cb.name).
				Int("success_count", cb.successCount).
				Msg("Circuit breaker closing after successful recovery")
			cb.successCount = 0
			cb.failureCount = 0
			cb.inFlight = 0
		}
	}
}

// Release returns a half-open trial slot for a call that ended without an
// outcome, such as one cancelled by its caller.
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen {
		cb.releaseTrial()
	}
}

func (cb *CircuitBreaker) releaseTrial() {
	if cb.inFlight > 0 {
		cb.inFlight--
	}
}

// RecordFailure records a failed operation.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = cb.now()

	cb.logger.Warn().
		Err(err).
		Str("circuit_breaker", cb.name).
		Int("failure_count", cb.failureCount).
		Msg("Circuit breaker recording failure")

	switch cb.state {
	case CircuitClosed:
		if cb.failureCount >= cb.config.MaxFailures {
			cb.transitionTo(CircuitOpen)
			cb.logger.Warn().
				Str("circuit_breaker", cb.name).
				Int("failure_count", cb.failureCount).
				Dur("reset_timeout", cb.config.ResetTimeout).
				Msg("Circuit breaker opening after max failures")
		}

	case CircuitHalfOpen:
		// Any failure in half-open immediately reopens the circuit
		cb.transitionTo(CircuitOpen)
		cb.logger.Warn().
			Str("circuit_breaker", cb.name).
			Msg("Circuit breaker re-opening after failure in half-open state")
		cb.successCount = 0
		cb.inFlight = 0
	}
}

func (cb *CircuitBreaker) transitionTo(newState CircuitBreakerState) {
	cb.state = newState
	breakerState.WithLabelValues(cb.name).Set(float64(newState))
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// FailureCount returns the current failure count.
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}

// Reset resets the circuit breaker to closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.transitionTo(CircuitClosed)
	cb.failureCount = 0
	cb.successCount = 0
	cb.inFlight = 0

	cb.logger.Info().
		Str("circuit_breaker", cb.name).
		Msg("Circuit breaker manually reset to closed state")
}

type breakerGenerator struct {
	next    Generator
	breaker *CircuitBreaker
}

// WithBreaker guards next with a circuit breaker. Calls cancelled by the
// caller are not counted as provider failures.
func WithBreaker(next Generator, config BreakerConfig, logger zerolog.Logger) Generator {
	return &breakerGenerator{
		next:    next,
		breaker: NewCircuitBreaker(next.Name(), config, logger),
	}
}

func (b *breakerGenerator) Name() string {
	return b.next.Name()
}

func (b *breakerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if !b.breaker.Allow() {
		return "", ErrCircuitOpen
	}

	text, err := b.next.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			b.breaker.Release()
		} else {
			b.breaker.RecordFailure(err)
		}
		return "", err
	}
	b.breaker.RecordSuccess()
	return text, nil
}
