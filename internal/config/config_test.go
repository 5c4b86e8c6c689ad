package config

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadIndexConfigDefaults(t *testing.T) {
	t.Setenv("RPYSCOPE_DB_PATH", "")
	t.Setenv("RPYSCOPE_SCAN_EXTS", "")

	cfg := LoadIndexConfigFromEnv()
	if cfg.DBPath != "" {
		t.Errorf("DBPath = %q, want empty (per-project default)", cfg.DBPath)
	}
	if !reflect.DeepEqual(cfg.Extensions, []string{".rpy", ".rpym"}) {
		t.Errorf("Extensions = %v", cfg.Extensions)
	}
}

func TestLoadIndexConfigOverrides(t *testing.T) {
	t.Setenv("RPYSCOPE_DB_PATH", "/tmp/custom.db")
	t.Setenv("RPYSCOPE_SCAN_EXTS", "rpy, .RPYM ,custom")

	cfg := LoadIndexConfigFromEnv()
	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	want := []string{".rpy", ".rpym", ".custom"}
	if !reflect.DeepEqual(cfg.Extensions, want) {
		t.Errorf("Extensions = %v, want %v", cfg.Extensions, want)
	}
}

func TestDBPathFor(t *testing.T) {
	t.Setenv("RPYSCOPE_DB_PATH", "")
	t.Setenv("RPYSCOPE_SCAN_EXTS", "")

	cfg := LoadIndexConfigFromEnv()
	want := filepath.Join("/proj", ".rpyscope", "symbols.db")
	if got := cfg.DBPathFor("/proj"); got != want {
		t.Errorf("DBPathFor() = %q, want %q", got, want)
	}

	cfg.DBPath = "/elsewhere/sym.db"
	if got := cfg.DBPathFor("/proj"); got != "/elsewhere/sym.db" {
		t.Errorf("DBPathFor() override = %q", got)
	}
}
