package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7780", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.Update.Enabled)
	assert.True(t, cfg.News.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("NEWS_URL", "https://example.com/news")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "https://example.com/news", cfg.News.URL)
}

func TestLoadFillsDataDir(t *testing.T) {
	t.Setenv("DATA_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestDefaultMatchesLoadDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "7780", cfg.Server.Port)
	assert.Equal(t, 50, cfg.RateLimit.RequestsPerSecond)
	assert.Empty(t, cfg.DataDir)
}
