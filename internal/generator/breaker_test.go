package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zerologNop() zerolog.Logger {
	return zerolog.Nop()
}

func TestCircuitBreakerTransitions(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := BreakerConfig{Enabled: true, MaxFailures: 2, ResetTimeout: 10 * time.Second, HalfOpenMaxCalls: 2}
	cb := NewCircuitBreaker("test", cfg, zerologNop())
	cb.now = func() time.Time { return now }

	require.Equal(t, CircuitClosed, cb.State())
	assert.True(t, cb.Allow())

	cb.RecordFailure(errors.New("first"))
	assert.Equal(t, CircuitClosed, cb.State())
	cb.RecordFailure(errors.New("second"))
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	now = now.Add(11 * time.Second)
	assert.True(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, CircuitHalfOpen, cb.State())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, 0, cb.FailureCount())
}

func TestCircuitBreakerReopensFromHalfOpen(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := BreakerConfig{Enabled: true, MaxFailures: 1, ResetTimeout: time.Second, HalfOpenMaxCalls: 1}
	cb := NewCircuitBreaker("test", cfg, zerologNop())
	cb.now = func() time.Time { return now }

	cb.RecordFailure(errors.New("down"))
	require.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Second)
	require.True(t, cb.Allow())
	cb.RecordFailure(errors.New("still down"))
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	cb.Reset()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreakerLimitsConcurrentHalfOpenTrials(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := BreakerConfig{Enabled: true, MaxFailures: 1, ResetTimeout: time.Second, HalfOpenMaxCalls: 2}
	cb := NewCircuitBreaker("test", cfg, zerologNop())
	cb.now = func() time.Time { return now }

	cb.RecordFailure(errors.New("down"))
	now = now.Add(2 * time.Second)

	// Two trials may be outstanding at once; a third waits for an outcome.
	require.True(t, cb.Allow())
	require.True(t, cb.Allow())
	assert.False(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// A released trial frees its slot without counting as success.
	cb.Release()
	assert.True(t, cb.Allow())
	assert.False(t, cb.Allow())

	cb.RecordSuccess()
	assert.Equal(t, CircuitHalfOpen, cb.State())
	assert.False(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreakerStateString(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitBreakerState(9).String())
}

func TestWithBreakerShortCircuits(t *testing.T) {
	stub := &stubGenerator{err: errors.New("unreachable")}
	g := WithBreaker(stub, BreakerConfig{Enabled: true, MaxFailures: 2, ResetTimeout: time.Hour, HalfOpenMaxCalls: 1}, zerologNop())

	for i := 0; i < 2; i++ {
		_, err := g.Generate(context.Background(), "p")
		assert.EqualError(t, err, "unreachable")
	}

	_, err := g.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, stub.calls)
	assert.Equal(t, "stub", g.Name())
}

func TestWithBreakerIgnoresCallerCancellation(t *testing.T) {
	stub := &stubGenerator{err: context.Canceled}
	g := WithBreaker(stub, BreakerConfig{Enabled: true, MaxFailures: 1, ResetTimeout: time.Hour, HalfOpenMaxCalls: 1}, zerologNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		_, err := g.Generate(ctx, "p")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 3, stub.calls)
}
