// Package config loads runtime configuration from environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"rpyscope/internal/index"
)

// IndexDirName is the per-project directory holding the symbol database.
const IndexDirName = ".rpyscope"

// IndexConfig holds configuration for the symbol index.
type IndexConfig struct {
	// DBPath is the symbol database location. Empty means the per-project
	// default under IndexDirName.
	DBPath string

	// Extensions are the script file extensions to index.
	Extensions []string
}

// LoadIndexConfigFromEnv loads index configuration from environment variables:
//   - RPYSCOPE_DB_PATH: database file path (default: <project>/.rpyscope/symbols.db)
//   - RPYSCOPE_SCAN_EXTS: comma-separated extensions (default: .rpy,.rpym)
func LoadIndexConfigFromEnv() IndexConfig {
	cfg := IndexConfig{
		Extensions: index.DefaultExtensions,
	}

	if path := os.Getenv("RPYSCOPE_DB_PATH"); path != "" {
		cfg.DBPath = path
	}

	if exts := os.Getenv("RPYSCOPE_SCAN_EXTS"); exts != "" {
		var parsed []string
		for _, e := range strings.Split(exts, ",") {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			parsed = append(parsed, strings.ToLower(e))
		}
		if len(parsed) > 0 {
			cfg.Extensions = parsed
		}
	}

	return cfg
}

// DBPathFor resolves the database path for a project root, honoring the
// RPYSCOPE_DB_PATH override.
func (c IndexConfig) DBPathFor(projectRoot string) string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(projectRoot, IndexDirName, "symbols.db")
}

// String returns a human-readable description of the configuration.
func (c IndexConfig) String() string {
	path := c.DBPath
	if path == "" {
		path = filepath.Join(IndexDirName, "symbols.db")
	}
	return "SQLite (" + path + "), extensions " + strings.Join(c.Extensions, ",")
}
