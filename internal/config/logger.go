package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a structured JSON logger on stdout tagged with the given component name
func (c *LoggerConfig) NewLogger(component string) *slog.Logger {
	return c.newLogger(os.Stdout, component)
}

func (c *LoggerConfig) newLogger(w io.Writer, component string) *slog.Logger {
	level := parseLogLevel(c.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug || level == slog.LevelError,
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))
	if component != "" {
		logger = logger.With("component", component)
	}
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
