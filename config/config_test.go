package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchmove/branch-service/internal/generator"
	"github.com/branchmove/branch-service/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr())
	assert.Equal(t, store.TypeFile, cfg.Store.Type)
	assert.Equal(t, store.DefaultDatasetKey, cfg.Store.File)
	assert.Equal(t, generator.ProviderMistral, cfg.AI.Provider)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.AI.Breaker.Enabled)
	assert.False(t, cfg.AI.Cache.Enabled)
	assert.Equal(t, []float64{20, 15, 10, 7}, cfg.Scoring.PriorityBonuses)
	assert.Equal(t, 5, cfg.Scoring.TopK)
	assert.Equal(t, "Head Office", cfg.Fallback.DefaultPick)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.BurstSize)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Same(t, cfg, Get())
}

func TestLoadFileOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 8080
store:
  type: postgres
database:
  url: postgres://localhost/branches
ai:
  provider: gemini
  timeout: 15s
scoring:
  distance_weight: 40
  criteria_weight: 30
  priority_weight: 30
  top_k: 3
fallback:
  default_pick: Central Branch
rate_limit:
  enabled: false
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, store.TypePostgres, cfg.Store.Type)
	assert.Equal(t, generator.ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 40.0, cfg.Scoring.DistanceWeight)
	assert.Equal(t, 3, cfg.Scoring.TopK)
	// Unset scoring keys keep their defaults.
	assert.Equal(t, 50.0, cfg.Scoring.MaxDistanceKm)
	assert.Equal(t, "Central Branch", cfg.Fallback.DefaultPick)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadEnvironmentBindings(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("MISTRAL_API_KEY", "m-key")
	t.Setenv("BRANCHES_PATH", "/srv/branches")
	t.Setenv("BRANCH_SERVICE_SCORING_TOP_K", "7")

	cfg, err := Load(writeConfig(t, "server:\n  port: 1234\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, generator.ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "g-key", cfg.AI.Gemini.APIKey)
	assert.Equal(t, "m-key", cfg.AI.Mistral.APIKey)
	assert.Equal(t, "/srv/branches", cfg.Store.BasePath)
	assert.Equal(t, 7, cfg.Scoring.TopK)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "weights do not sum to 100", body: "scoring:\n  distance_weight: 50\n"},
		{name: "postgres without url", body: "store:\n  type: postgres\n"},
		{name: "unknown store type", body: "store:\n  type: s3\n"},
		{name: "zero burst", body: "rate_limit:\n  burst: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnvFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
export BRANCH_TEST_ONE="from-file"
BRANCH_TEST_TWO='from-file'
not a pair
`), 0o644))

	t.Setenv("BRANCH_TEST_TWO", "from-env")
	t.Setenv("BRANCH_TEST_ONE", "")
	os.Unsetenv("BRANCH_TEST_ONE")

	require.NoError(t, loadDotEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("BRANCH_TEST_ONE"))
	assert.Equal(t, "from-env", os.Getenv("BRANCH_TEST_TWO"))
}
