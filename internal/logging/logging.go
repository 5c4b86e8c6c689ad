// Package logging provides structured logging via log/slog.
//
// Behavior is controlled through environment variables:
//   - RPYSCOPE_LOG_LEVEL: debug, info, warn, error (default: info)
//   - RPYSCOPE_LOG_FORMAT: text, json (default: text)
//
// Everything logs to stderr; stdout is reserved for the editor protocol.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logging configuration.
type Config struct {
	Level     slog.Level
	Format    string    // "text" or "json"
	Output    io.Writer // defaults to os.Stderr
	Component string    // component name attached to every record
}

// DefaultConfig returns the defaults for the given component.
func DefaultConfig(component string) Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    "text",
		Output:    os.Stderr,
		Component: component,
	}
}

// FromEnv reads logging configuration from the environment, falling back to
// DefaultConfig for anything unset or unrecognized.
func FromEnv(component string) Config {
	cfg := DefaultConfig(component)

	switch strings.ToLower(os.Getenv("RPYSCOPE_LOG_LEVEL")) {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "info":
		cfg.Level = slog.LevelInfo
	case "warn", "warning":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	}

	if format := strings.ToLower(os.Getenv("RPYSCOPE_LOG_FORMAT")); format != "" {
		cfg.Format = format
	}

	return cfg
}

// New creates a configured slog.Logger.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler).With("component", cfg.Component)
}

// Default returns a logger configured from the environment. This is the
// usual entry point for the binaries.
func Default(component string) *slog.Logger {
	return New(FromEnv(component))
}

// Nop returns a logger that discards all output. Useful in tests.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
