package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const cacheKeyPrefix = "branch-advice:"

// CacheBackend is the subset of the Redis client used by the response cache.
type CacheBackend interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type cachedGenerator struct {
	next    Generator
	backend CacheBackend
	ttl     time.Duration
	logger  zerolog.Logger
}

// WithCache serves repeated prompts from Redis. Cache failures are logged
// and never fail the call.
func WithCache(next Generator, backend CacheBackend, ttl time.Duration, logger zerolog.Logger) Generator {
	return &cachedGenerator{
		next:    next,
		backend: backend,
		ttl:     ttl,
		logger:  logger,
	}
}

// NewRedisClient creates the Redis client backing the response cache.
func NewRedisClient(cfg CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (c *cachedGenerator) Name() string {
	return c.next.Name()
}

func (c *cachedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.key(prompt)

	cached, err := c.backend.Get(ctx, key).Result()
	switch {
	case err == nil && cached != "":
		cacheLookups.WithLabelValues(c.Name(), "hit").Inc()
		return cached, nil
	case err == nil || errors.Is(err, redis.Nil):
		cacheLookups.WithLabelValues(c.Name(), "miss").Inc()
	default:
		cacheLookups.WithLabelValues(c.Name(), "error").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("Response cache lookup failed")
	}

	text, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := c.backend.Set(ctx, key, text, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Response cache write failed")
	}
	return text, nil
}

func (c *cachedGenerator) key(prompt string) string {
	return cacheKeyPrefix + c.Name() + ":" + hashPrompt(prompt)
}

// hashPrompt returns the first 16 bytes of the prompt's SHA-256 as hex.
func hashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:16])
}
