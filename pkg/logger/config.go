package logger

import (
	"log/slog"
	"strings"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config selects the level and format of the process logger.
type Config struct {
	Level  string       `yaml:"level"`
	Format string       `yaml:"format"`
	Sentry SentryConfig `yaml:"sentry"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	// MinLevel is "warn" or "error". Records at or above it are kept as Sentry logs.
	MinLevel string `yaml:"min_level"`
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
