package generator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	httpclient "github.com/branchmove/branch-service/internal/http"
	"github.com/branchmove/branch-service/internal/http/ratelimit"
)

// New builds the configured provider and wraps it in the rate limiter,
// circuit breaker and, when enabled, the Redis response cache. The Redis
// client is returned so the caller can close it; it is nil when caching is off.
func New(cfg *Config, logger zerolog.Logger) (Generator, CacheCloser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger = logger.With().Str("component", "generator").Str("provider", cfg.Provider).Logger()

	var g Generator
	switch cfg.Provider {
	case ProviderMistral:
		g = WithRateLimit(NewMistral(cfg.Mistral, cfg.Timeout), cfg.RateLimit)
	case ProviderGemini:
		// The HTTP client carries its own limiter and retries.
		g = NewGemini(cfg.Gemini, httpclient.NewClient(cfg.RateLimit, cfg.Timeout))
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	if cfg.Breaker.Enabled {
		g = WithBreaker(g, cfg.Breaker, logger)
	}

	var closer CacheCloser
	if cfg.Cache.Enabled {
		client := NewRedisClient(cfg.Cache)
		g = WithCache(g, client, cfg.Cache.TTL, logger)
		closer = client
	}

	logger.Info().
		Bool("breaker", cfg.Breaker.Enabled).
		Bool("cache", cfg.Cache.Enabled).
		Dur("timeout", cfg.Timeout).
		Msg("Text generator configured")

	return g, closer, nil
}

// CacheCloser releases the response cache connection.
type CacheCloser interface {
	Close() error
}

type limitedGenerator struct {
	next    Generator
	limiter *ratelimit.RateLimiter
}

// WithRateLimit paces calls to next.
func WithRateLimit(next Generator, cfg ratelimit.Config) Generator {
	return &limitedGenerator{next: next, limiter: ratelimit.NewRateLimiter(cfg)}
}

func (l *limitedGenerator) Name() string {
	return l.next.Name()
}

func (l *limitedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return l.next.Generate(ctx, prompt)
}
