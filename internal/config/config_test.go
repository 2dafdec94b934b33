package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://fedresurs.ru", cfg.Scrape.BaseURL)
	assert.Equal(t, "Leasing", cfg.Scrape.Group)
	assert.Equal(t, "2023-04", cfg.Scrape.DefaultStart)
	assert.Equal(t, 15, cfg.Scrape.PageLimit)
	assert.Equal(t, 30*time.Second, cfg.Scrape.PageLoadTimeout)
	assert.Equal(t, time.Second, cfg.Scrape.FetchInterval)
	assert.Equal(t, 10, cfg.Scrape.SaveEvery)
	assert.Contains(t, cfg.Scrape.UserAgent, "Chrome")
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Status.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FEDSCAN_SCRAPE_PAGE_LIMIT", "25")
	t.Setenv("FEDSCAN_SCRAPE_GROUP", "Bankruptcy")
	t.Setenv("FEDSCAN_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Scrape.PageLimit)
	assert.Equal(t, "Bankruptcy", cfg.Scrape.Group)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("FEDSCAN_LOGGING_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("bad default start", func(t *testing.T) {
		cfg := Default()
		cfg.Scrape.DefaultStart = "April 2023"
		assert.ErrorContains(t, cfg.Validate(), "must be YYYY-MM")
	})

	t.Run("zero page limit", func(t *testing.T) {
		cfg := Default()
		cfg.Scrape.PageLimit = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad base url", func(t *testing.T) {
		cfg := Default()
		cfg.Scrape.BaseURL = "not a url"
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scrape:
  base_url: https://example.org
  page_limit: 50
logging:
  level: warn
`), 0644))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", cfg.Scrape.BaseURL)
	assert.Equal(t, 50, cfg.Scrape.PageLimit)
	assert.Equal(t, "warn", cfg.Logging.Level)

	_, err = loadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestMergePrefersEnvValues(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Scrape.BaseURL = "https://file.example"
	fileCfg.Scrape.Group = "FromFile"
	fileCfg.Logging.Level = "warn"

	envCfg := Config{}
	envCfg.Scrape.BaseURL = "https://env.example"

	out := merge(fileCfg, envCfg)
	assert.Equal(t, "https://env.example", out.Scrape.BaseURL, "env wins when set")
	assert.Equal(t, "FromFile", out.Scrape.Group, "file fills env zero values")
	assert.Equal(t, "warn", out.Logging.Level)
}
