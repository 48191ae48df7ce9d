package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "curator.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, "https://query.wikidata.org/sparql", cfg.Wikidata.Endpoint)
	assert.Equal(t, 200, cfg.Discovery.Limit)
	assert.Equal(t, []string{"actress", "anchor", "model", "influencer"}, cfg.Discovery.Types)
	assert.Equal(t, 500, cfg.Discovery.ThrottleMs)
	assert.InDelta(t, 0.3, cfg.Ranking.PopularityWeight, 0.001)
	assert.InDelta(t, 40, cfg.Ranking.MinScoreForEligibility, 0.001)
	assert.Equal(t, 50, cfg.Ranking.TopN)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/curator
log:
  level: debug
  format: console
discovery:
  limit: 25
ranking:
  top_n: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 25, cfg.Discovery.Limit)
	assert.Equal(t, 10, cfg.Ranking.TopN)
	// Defaults still apply for unset values
	assert.Equal(t, 500, cfg.Discovery.ThrottleMs)
	assert.InDelta(t, 0.3, cfg.Ranking.PopularityWeight, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CURATOR_STORE_DRIVER", "postgres")
	t.Setenv("CURATOR_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("CURATOR_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults loads defaults without touching the filesystem beyond a
// temp dir, for validation tests.
func validDefaults(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestValidateDiscover(t *testing.T) {
	cfg := validDefaults(t)
	assert.NoError(t, cfg.Validate("discover"))

	cfg.Wikidata.Endpoint = ""
	err := cfg.Validate("discover")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wikidata.endpoint is required")
}

func TestValidateIngestBadTypes(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Discovery.Types = nil

	err := cfg.Validate("ingest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "discovery.types")
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("discover")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestValidateServePort(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")

	cfg.Server.Port = 9090
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults(t)
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateRankingPropagates(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Ranking.TopN = -1

	err := cfg.Validate("learn")
	assert.Error(t, err)
}
