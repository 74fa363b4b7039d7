package generator

import (
	"time"

	"github.com/branchmove/branch-service/internal/http/ratelimit"
)

// Provider names accepted in configuration.
const (
	ProviderMistral = "mistral"
	ProviderGemini  = "gemini"
)

// Config selects and configures the text generation backend.
type Config struct {
	Provider  string           `mapstructure:"provider" env:"AI_PROVIDER" default:"mistral"`
	Timeout   time.Duration    `mapstructure:"timeout" env:"AI_TIMEOUT" default:"60s"`
	Mistral   MistralConfig    `mapstructure:"mistral"`
	Gemini    GeminiConfig     `mapstructure:"gemini"`
	Breaker   BreakerConfig    `mapstructure:"breaker"`
	Cache     CacheConfig      `mapstructure:"cache"`
	RateLimit ratelimit.Config `mapstructure:"rate_limit"`
}

// MistralConfig configures the Mistral chat completions API.
type MistralConfig struct {
	APIKey      string  `mapstructure:"api_key" env:"MISTRAL_API_KEY"`
	BaseURL     string  `mapstructure:"base_url" default:"https://api.mistral.ai/v1"`
	Model       string  `mapstructure:"model" default:"mistral-large-latest"`
	Temperature float32 `mapstructure:"temperature" default:"0.7"`
	MaxTokens   int     `mapstructure:"max_tokens" default:"1000"`
}

// GeminiConfig configures the Gemini generateContent API.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key" env:"GEMINI_API_KEY"`
	URL    string `mapstructure:"url" default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"`
}

// BreakerConfig holds configuration for the circuit breaker.
type BreakerConfig struct {
	// Enabled wraps the provider in a circuit breaker.
	Enabled bool `mapstructure:"enabled" default:"true"`

	// MaxFailures is the number of consecutive failures before opening the circuit.
	MaxFailures int `mapstructure:"max_failures" default:"5"`

	// ResetTimeout is how long to wait before attempting a reset (half-open state).
	ResetTimeout time.Duration `mapstructure:"reset_timeout" default:"30s"`

	// HalfOpenMaxCalls is the number of successful calls needed to close from half-open.
	HalfOpenMaxCalls int `mapstructure:"half_open_max_calls" default:"3"`
}

// CacheConfig configures the optional Redis response cache.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" default:"false"`
	RedisAddr string        `mapstructure:"redis_addr" env:"REDIS_ADDR" default:"localhost:6379"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db" default:"0"`
	TTL       time.Duration `mapstructure:"ttl" default:"10m"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Provider: ProviderMistral,
		Timeout:  60 * time.Second,
		Mistral: MistralConfig{
			BaseURL:     "https://api.mistral.ai/v1",
			Model:       "mistral-large-latest",
			Temperature: 0.7,
			MaxTokens:   1000,
		},
		Gemini: GeminiConfig{
			URL: "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent",
		},
		Breaker:   DefaultBreakerConfig(),
		Cache:     CacheConfig{RedisAddr: "localhost:6379", TTL: 10 * time.Minute},
		RateLimit: ratelimit.DefaultConfig(),
	}
}

// DefaultBreakerConfig returns the default circuit breaker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		MaxFailures:      5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// Validate checks the provider selection and its credentials.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderMistral:
		if c.Mistral.APIKey == "" {
			return ErrInvalidConfig{Field: "ai.mistral.api_key", Reason: ErrMissingAPIKey.Error()}
		}
		if c.Mistral.BaseURL == "" {
			return ErrInvalidConfig{Field: "ai.mistral.base_url", Reason: "must be set"}
		}
		if c.Mistral.Model == "" {
			return ErrInvalidConfig{Field: "ai.mistral.model", Reason: "must be set"}
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return ErrInvalidConfig{Field: "ai.gemini.api_key", Reason: ErrMissingAPIKey.Error()}
		}
		if c.Gemini.URL == "" {
			return ErrInvalidConfig{Field: "ai.gemini.url", Reason: "must be set"}
		}
	default:
		return ErrInvalidConfig{Field: "ai.provider", Reason: ErrUnknownProvider.Error() + ": " + c.Provider}
	}
	if c.Timeout <= 0 {
		return ErrInvalidConfig{Field: "ai.timeout", Reason: "must be positive"}
	}
	if c.Breaker.Enabled {
		if c.Breaker.MaxFailures < 1 {
			return ErrInvalidConfig{Field: "ai.breaker.max_failures", Reason: "must be at least 1"}
		}
		if c.Breaker.ResetTimeout <= 0 {
			return ErrInvalidConfig{Field: "ai.breaker.reset_timeout", Reason: "must be positive"}
		}
		if c.Breaker.HalfOpenMaxCalls < 1 {
			return ErrInvalidConfig{Field: "ai.breaker.half_open_max_calls", Reason: "must be at least 1"}
		}
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return ErrInvalidConfig{Field: "ai.cache.ttl", Reason: "must be positive"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
