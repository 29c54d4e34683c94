package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Desktop config
	assert.Equal(t, 10, cfg.Desktop.BaseZIndex)
	assert.Equal(t, 800.0, cfg.Desktop.WindowWidth)
	assert.Equal(t, 0.10, cfg.Desktop.Reserved)

	// Weather config
	assert.Empty(t, cfg.Weather.APIKey)
	assert.Equal(t, 10*time.Minute, cfg.Weather.RefreshInterval)
	assert.Equal(t, 64, cfg.Weather.CacheSize)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	t.Setenv("PORT", "8000")
	t.Setenv("HOST", "0.0.0.0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"ALLOWED_ORIGINS":    "http://a.test,http://b.test",
		"SHUTDOWN_TIMEOUT":   "3s",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"BASE_Z_INDEX":       "50",
		"WINDOW_WIDTH":       "640",
		"TASKBAR_RESERVED":   "0.2",
		"STATE_DIR":          "/var/lib/webtop",
		"STATE_COMPRESS":     "true",
		"WEATHER_API_KEY":    "secret",
		"WEATHER_REFRESH":    "5m",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, 50, cfg.Desktop.BaseZIndex)
	assert.Equal(t, 640.0, cfg.Desktop.WindowWidth)
	assert.Equal(t, 0.2, cfg.Desktop.Reserved)

	assert.Equal(t, "/var/lib/webtop", cfg.Persistence.Dir)
	assert.True(t, cfg.Persistence.Compress)

	assert.Equal(t, "secret", cfg.Weather.APIKey)
	assert.Equal(t, 5*time.Minute, cfg.Weather.RefreshInterval)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("TASKBAR_RESERVED", "1.5")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TASKBAR_RESERVED", "0.1")
	t.Setenv("RATE_LIMIT_RPS", "lots")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("VIEWPORT_WIDTH", "-1")

	cfg := LoadOrDefault()
	assert.Equal(t, "8000", cfg.Server.Port)
}
