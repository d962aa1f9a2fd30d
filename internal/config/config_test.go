package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Search.MaxResultsPerSite)
	assert.Equal(t, 2, cfg.Search.MaxConcurrentScrapers)
	assert.Equal(t, 1.0, cfg.Search.RateLimitMinDelay)
	assert.Equal(t, 3.0, cfg.Search.RateLimitMaxDelay)
	assert.Equal(t, 3.0, cfg.Search.LinkedInMinDelay)
	assert.Equal(t, 8.0, cfg.Search.LinkedInMaxDelay)
	assert.True(t, cfg.Sources.EnableRemotive)
	assert.False(t, cfg.Sources.EnableIndeed)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
search:
  max_concurrent_scrapers: 4
  rate_limit_min_delay: 0.5
  rate_limit_max_delay: 1.5
sources:
  enable_linkedin: false
adzuna:
  country: gb
`)
	t.Setenv("JOBSCOUT_SEARCH_MAX_RESULTS_PER_SITE", "10")
	t.Setenv("JOBSCOUT_SOURCES_ENABLE_INDEED", "true")
	t.Setenv("ADZUNA_APP_ID", "legacy-id")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Search.MaxConcurrentScrapers)
	assert.Equal(t, 10, cfg.Search.MaxResultsPerSite)
	assert.Equal(t, 500*time.Millisecond, Seconds(cfg.Search.RateLimitMinDelay))
	assert.False(t, cfg.Sources.EnableLinkedIn)
	assert.True(t, cfg.Sources.EnableIndeed)
	assert.Equal(t, "gb", cfg.Adzuna.Country)
	assert.Equal(t, "legacy-id", cfg.Adzuna.AppID)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		var c Config
		c.ApplyDefaults()
		return c
	}

	require.NoError(t, base().Validate())

	c := base()
	c.Search.RateLimitMinDelay, c.Search.RateLimitMaxDelay = 3, 1
	assert.ErrorContains(t, c.Validate(), "rate_limit_max_delay")

	c = base()
	c.Sources.EnableAdzuna = true
	assert.ErrorContains(t, c.Validate(), "ADZUNA_APP_ID")

	c = base()
	c.Storage.Driver = "mongo"
	assert.ErrorContains(t, c.Validate(), "storage.driver")

	c = base()
	c.Storage.Driver = DriverSQLite
	assert.ErrorContains(t, c.Validate(), "storage.dsn")
	c.Storage.DSN = "file::memory:"
	assert.NoError(t, c.Validate())
}
