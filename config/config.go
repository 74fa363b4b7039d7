package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/branchmove/branch-service/internal/advisor"
	"github.com/branchmove/branch-service/internal/generator"
	"github.com/branchmove/branch-service/internal/middleware"
	"github.com/branchmove/branch-service/internal/scoring"
	"github.com/branchmove/branch-service/internal/store"
	"github.com/branchmove/branch-service/internal/telemetry"
)

// EnvPrefix prefixes every automatically mapped environment variable
const EnvPrefix = "BRANCH_SERVICE"

// Config holds the application configuration
type Config struct {
	Server    ServerConfig                 `mapstructure:"server"`
	Logging   LoggingConfig                `mapstructure:"logging"`
	Store     StoreConfig                  `mapstructure:"store"`
	Database  DatabaseConfig               `mapstructure:"database"`
	AI        generator.Config             `mapstructure:"ai"`
	Scoring   scoring.Config               `mapstructure:"scoring"`
	Fallback  FallbackConfig               `mapstructure:"fallback"`
	RateLimit middleware.RateLimiterConfig `mapstructure:"rate_limit"`
	Telemetry telemetry.Config             `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects and locates the branch dataset
type StoreConfig struct {
	Type     string `mapstructure:"type"`
	BasePath string `mapstructure:"base_path"`
	File     string `mapstructure:"file"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// FallbackConfig configures the distance-only recommendation
type FallbackConfig struct {
	DefaultPick string `mapstructure:"default_pick"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		// .env is optional
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate checks the settings that do not depend on credentials. Provider
// credentials are checked when the generator is built.
func (c *Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("invalid scoring config: %w", err)
	}
	switch c.Store.Type {
	case store.TypeFile:
		if c.Store.BasePath == "" || c.Store.File == "" {
			return fmt.Errorf("store.base_path and store.file are required for the file store")
		}
	case store.TypePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store type: %q", c.Store.Type)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize < 1) {
		return fmt.Errorf("rate_limit.requests_per_second and rate_limit.burst must be positive")
	}
	return nil
}

// loadEnvFile sets environment variables from the first .env file found
func loadEnvFile() error {
	for _, path := range []string{".", "./config"} {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			if err := loadDotEnvFile(envFile); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads KEY=VALUE lines. Variables already present in the
// environment win over the file.
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), "\"'")
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
	}
	return scanner.Err()
}

// bindEnvVars binds the unprefixed variables operators usually set
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	v.BindEnv("server.host", EnvPrefix+"_SERVER_HOST", "HOST")

	// Logging
	v.BindEnv("logging.level", EnvPrefix+"_LOGGING_LEVEL", "LOG_LEVEL")

	// AI
	v.BindEnv("ai.provider", EnvPrefix+"_AI_PROVIDER", "AI_PROVIDER")
	v.BindEnv("ai.mistral.api_key", EnvPrefix+"_AI_MISTRAL_API_KEY", "MISTRAL_API_KEY")
	v.BindEnv("ai.gemini.api_key", EnvPrefix+"_AI_GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("ai.cache.redis_addr", EnvPrefix+"_AI_CACHE_REDIS_ADDR", "REDIS_ADDR")

	// Store
	v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	v.BindEnv("store.base_path", EnvPrefix+"_STORE_BASE_PATH", "BRANCHES_PATH")

	// Telemetry
	v.BindEnv("telemetry.endpoint", EnvPrefix+"_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	// Recommendations wait on the upstream model, so writes get more room.
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Store defaults
	v.SetDefault("store.type", store.TypeFile)
	v.SetDefault("store.base_path", "./data")
	v.SetDefault("store.file", store.DefaultDatasetKey)

	// Database defaults
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	// AI defaults
	ai := generator.Defaults()
	v.SetDefault("ai.provider", ai.Provider)
	v.SetDefault("ai.timeout", ai.Timeout)
	v.SetDefault("ai.mistral.base_url", ai.Mistral.BaseURL)
	v.SetDefault("ai.mistral.model", ai.Mistral.Model)
	v.SetDefault("ai.mistral.temperature", ai.Mistral.Temperature)
	v.SetDefault("ai.mistral.max_tokens", ai.Mistral.MaxTokens)
	v.SetDefault("ai.gemini.url", ai.Gemini.URL)
	v.SetDefault("ai.breaker.enabled", ai.Breaker.Enabled)
	v.SetDefault("ai.breaker.max_failures", ai.Breaker.MaxFailures)
	v.SetDefault("ai.breaker.reset_timeout", ai.Breaker.ResetTimeout)
	v.SetDefault("ai.breaker.half_open_max_calls", ai.Breaker.HalfOpenMaxCalls)
	v.SetDefault("ai.cache.enabled", ai.Cache.Enabled)
	v.SetDefault("ai.cache.redis_addr", ai.Cache.RedisAddr)
	v.SetDefault("ai.cache.db", ai.Cache.DB)
	v.SetDefault("ai.cache.ttl", ai.Cache.TTL)
	v.SetDefault("ai.rate_limit.requests_per_second", ai.RateLimit.RequestsPerSecond)
	v.SetDefault("ai.rate_limit.burst", ai.RateLimit.Burst)
	v.SetDefault("ai.rate_limit.max_retries", ai.RateLimit.MaxRetries)
	v.SetDefault("ai.rate_limit.initial_backoff_ms", ai.RateLimit.InitialBackoffMs)
	v.SetDefault("ai.rate_limit.max_backoff_ms", ai.RateLimit.MaxBackoffMs)

	// Scoring defaults
	sc := scoring.Defaults()
	v.SetDefault("scoring.distance_weight", sc.DistanceWeight)
	v.SetDefault("scoring.criteria_weight", sc.CriteriaWeight)
	v.SetDefault("scoring.priority_weight", sc.PriorityWeight)
	v.SetDefault("scoring.max_distance_km", sc.MaxDistanceKm)
	v.SetDefault("scoring.very_far_km", sc.VeryFarKm)
	v.SetDefault("scoring.priority_bonuses", sc.PriorityBonuses)
	v.SetDefault("scoring.score_tolerance", sc.ScoreTolerance)
	v.SetDefault("scoring.top_k", sc.TopK)

	// Fallback defaults
	v.SetDefault("fallback.default_pick", advisor.DefaultFallbackPick)

	// Inbound rate limit defaults
	rl := middleware.DefaultRateLimiterConfig()
	v.SetDefault("rate_limit.enabled", rl.Enabled)
	v.SetDefault("rate_limit.requests_per_second", rl.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", rl.BurstSize)
	v.SetDefault("rate_limit.idle_ttl", rl.IdleTTL)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", telemetry.DefaultServiceName)
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.export_interval", 30*time.Second)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
