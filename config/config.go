/*
Package config loads server configuration from the environment.

A .env file in the working directory is loaded first if present, then
ROOMRENTAL_* variables are processed. Command-line flags in cmd/server
override the port and database path.
*/
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Port is the HTTP listen port.
	Port int `envconfig:"PORT" default:"8080"`

	// DatabasePath is the SQLite database path. ":memory:" for ephemeral.
	DatabasePath string `envconfig:"DATABASE_PATH" default:"roomrental.db"`

	// RequireLogin gates mutating ledger operations behind a logged-in
	// account. Off by default.
	RequireLogin bool `envconfig:"REQUIRE_LOGIN" default:"false"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CORSOrigins are the allowed browser origins, comma-separated.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("roomrental", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// SlogLevel maps the configured level string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
