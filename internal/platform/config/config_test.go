package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_DefaultValues tests that hardcoded defaults are applied and pass validation.
func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "quotedesk", cfg.App.Name)
	assert.Equal(t, "dev", cfg.App.Version)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, ViewTrackingStore, cfg.ViewTracking.Mode)
	assert.Equal(t, NotifyModeLog, cfg.Notify.Mode)
	assert.Equal(t, DefaultTaxRate, cfg.Quote.DefaultTaxRate)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "warn")
	t.Setenv("APP_STORE__POSTGREST__API_KEY", "anon-key")
	t.Setenv("APP_VIEW_TRACKING__MODE", "off")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "anon-key", cfg.Store.PostgREST.APIKey)
	assert.Equal(t, ViewTrackingOff, cfg.ViewTracking.Mode)
}

func TestLoad_DurationParsing(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Client.Retry.InitialInterval)
	assert.Equal(t, 2*time.Second, cfg.Client.Retry.MaxInterval)
	assert.Equal(t, 15*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 5*time.Second, cfg.ViewTracking.Timeout)
	assert.Equal(t, time.Second, cfg.Notify.Delay)
	assert.Equal(t, 12*time.Hour, cfg.Quote.DraftIdleTTL)
	assert.Equal(t, 10*time.Minute, cfg.Quote.DraftSweepInterval)
}

func TestLoad_FeatureDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, false, cfg.Features.Flags["block-unbalanced-schedule"])
	assert.Equal(t, true, cfg.Features.Flags["track-client-views"])
	assert.Equal(t, DefaultSearchLimit, cfg.Features.Ints["quote-search-limit"])
}

func TestLoadFrom_ProfileOverridesBase(t *testing.T) {
	dir := t.TempDir()

	base := []byte("store:\n  driver: sql\n  sql:\n    dialect: sqlite\n    dsn: file:base.db\nquote:\n  public_base_url: https://quotes.example.com\n")
	profile := []byte("store:\n  sql:\n    dsn: file:profile.db\nlog:\n  format: pretty\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), base, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qa.yaml"), profile, 0o600))

	cfg, err := LoadFrom(dir, "qa")
	require.NoError(t, err)

	assert.Equal(t, StoreDriverSQL, cfg.Store.Driver)
	assert.Equal(t, "sqlite", cfg.Store.SQL.Dialect)
	assert.Equal(t, "file:profile.db", cfg.Store.SQL.DSN)
	assert.Equal(t, "pretty", cfg.Log.Format)
	assert.Equal(t, "https://quotes.example.com", cfg.Quote.PublicBaseURL)
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("store: [unclosed"), 0o600))

	_, err := LoadFrom(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading base config")
}

func TestLoad_NonExistentProfile(t *testing.T) {
	cfg, err := Load("nonexistent")
	require.NoError(t, err)

	assert.Equal(t, "quotedesk", cfg.App.Name)
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"APP_LOG_LEVEL":                   "log.level",
		"APP_STORE__SQL__DSN":             "store.sql.dsn",
		"APP_QUOTE__PUBLIC_BASE_URL":      "quote.public_base_url",
		"APP_CLIENT__RETRY__MAX_ATTEMPTS": "client.retry.max_attempts",
	}

	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}
