package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("test-component")

	if cfg.Level != slog.LevelInfo {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %q, want text", cfg.Format)
	}
	if cfg.Component != "test-component" {
		t.Errorf("Component = %q", cfg.Component)
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		format     string
		wantLevel  slog.Level
		wantFormat string
	}{
		{"defaults", "", "", slog.LevelInfo, "text"},
		{"debug", "debug", "", slog.LevelDebug, "text"},
		{"warn", "warn", "", slog.LevelWarn, "text"},
		{"warning alias", "warning", "", slog.LevelWarn, "text"},
		{"error uppercase", "ERROR", "", slog.LevelError, "text"},
		{"json", "", "json", slog.LevelInfo, "json"},
		{"json uppercase", "", "JSON", slog.LevelInfo, "json"},
		{"unknown level falls back", "loud", "", slog.LevelInfo, "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RPYSCOPE_LOG_LEVEL", tt.level)
			t.Setenv("RPYSCOPE_LOG_FORMAT", tt.format)

			cfg := FromEnv("test")
			if cfg.Level != tt.wantLevel {
				t.Errorf("Level = %v, want %v", cfg.Level, tt.wantLevel)
			}
			if cfg.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", cfg.Format, tt.wantFormat)
			}
		})
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "text", Output: &buf, Component: "tester"})

	logger.Info("test message", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "test message") {
		t.Errorf("output missing message: %s", out)
	}
	if !strings.Contains(out, "component=tester") {
		t.Errorf("output missing component: %s", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("output missing attribute: %s", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf, Component: "j"})

	logger.Info("json test")

	out := buf.String()
	if !strings.Contains(out, `"msg":"json test"`) {
		t.Errorf("JSON output missing msg: %s", out)
	}
	if !strings.Contains(out, `"component":"j"`) {
		t.Errorf("JSON output missing component: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: "text", Output: &buf, Component: "f"})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("low-level records should be filtered: %s", out)
	}
	if !strings.Contains(out, "warn message") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestNop(t *testing.T) {
	logger := Nop()

	// Must not panic, must not write anywhere visible.
	logger.Info("nothing")
	logger.Error("still nothing")
	logger.With("key", "value").Debug("quiet")
}
