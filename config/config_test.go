package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlease/roomrental/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "roomrental.db", cfg.DatabasePath)
	assert.False(t, cfg.RequireLogin)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ROOMRENTAL_PORT", "9090")
	t.Setenv("ROOMRENTAL_DATABASE_PATH", ":memory:")
	t.Setenv("ROOMRENTAL_REQUIRE_LOGIN", "true")
	t.Setenv("ROOMRENTAL_LOG_LEVEL", "debug")
	t.Setenv("ROOMRENTAL_CORS_ORIGINS", "https://rooms.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DatabasePath)
	assert.True(t, cfg.RequireLogin)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"https://rooms.example.com"}, cfg.CORSOrigins)
}

func TestSlogLevelFallsBackToInfo(t *testing.T) {
	cfg := &config.Config{LogLevel: "verbose"}
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
