package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/vbet/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: wss://feed.example.com/ws
  profile: DESKTOP
  odd_setting_id: 3
  unit_id: 7
  requests_per_second: 2
games:
  - id: 41
    name: premier
    max_rounds: 38
    strategies: [underdog]
  - id: 42
    name: bundesliga
    max_rounds: 34
engine:
  fixtures_retry_seconds: 1
  results_retry_seconds: 2
  max_result_retries: 3
  max_backfill_iterations: 5
  future_results: true
  prefetch_seconds: 1
betting:
  stake: 50
  min_odd: 1.1
  form_span: 4
storage:
  dsn: ":memory:"
log:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://feed.example.com/ws", cfg.Feed.URL)
	assert.Equal(t, "DESKTOP", cfg.Feed.Profile)
	require.Len(t, cfg.Games, 2)
	assert.Equal(t, 34, cfg.Games[1].MaxRounds)
	// El juego sin estrategias explícitas recibe la de defecto.
	assert.Equal(t, []string{"underdog"}, cfg.Games[1].Strategies)

	assert.Equal(t, time.Second, cfg.FixturesRetryDelay())
	assert.Equal(t, 2*time.Second, cfg.ResultsRetryDelay())
	assert.True(t, cfg.Engine.FutureResults)
	assert.InDelta(t, 50, cfg.Betting.Stake, 0.001)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: wss://feed.example.com/ws
games:
  - id: 41
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "MOBILE", cfg.Feed.Profile)
	assert.Equal(t, 2*time.Second, cfg.FixturesRetryDelay())
	assert.Equal(t, 3*time.Second, cfg.ResultsRetryDelay())
	assert.Equal(t, 3, cfg.Engine.MaxResultRetries)
	assert.Equal(t, 5, cfg.Engine.MaxBackfillIterations)
	assert.Equal(t, 38, cfg.Games[0].MaxRounds)
	assert.InDelta(t, 1.02, cfg.Betting.MinOdd, 0.001)
	assert.Equal(t, "vbet.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: wss://feed.example.com/ws
log:
  level: info
`)

	t.Setenv("FEED_URL", "wss://other.example.com/ws")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://other.example.com/ws", cfg.Feed.URL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "feed: [broken")
	_, err := config.Load(path)
	assert.Error(t, err)
}
