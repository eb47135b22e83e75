package app

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, "@every 5m", cfg.SweepSchedule)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOW_STOCK_THRESHOLD", "0")
	t.Setenv("APP_RATE_LIMIT", "30")
	t.Setenv("ODYSSEY_TEST_MODE", "1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 0, cfg.LowStockThreshold)
	assert.Equal(t, 30, cfg.RateLimit)
	assert.True(t, cfg.TestMode)
}

func TestConfigValidate(t *testing.T) {
	base := Config{SessionSecret: "s", CSRFSecret: "c", SessionTTL: time.Hour}
	require.NoError(t, base.Validate())

	noSecret := base
	noSecret.SessionSecret = ""
	assert.Error(t, noSecret.Validate())

	noTTL := base
	noTTL.SessionTTL = 0
	assert.Error(t, noTTL.Validate())

	negative := base
	negative.LowStockThreshold = -1
	assert.ErrorIs(t, negative.Validate(), ledger.ErrInvalidThreshold)
}
