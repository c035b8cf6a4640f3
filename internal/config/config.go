// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3000"`
	DBPath   string `env:"DB_PATH" envDefault:"data/forgesworn.db"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Narration backend (optional; the demo endpoint reports disabled
	// when unset).
	LLMURL   string `env:"LLM_URL"`
	LLMModel string `env:"LLM_MODEL"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// SlogLevel translates LogLevel into a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
}
