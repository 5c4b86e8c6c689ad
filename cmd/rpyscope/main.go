// rpyscope serves language-intelligence queries for a Ren'Py project over
// stdio. Run it from the project root after indexing with rpyscope-index.
package main

import (
	"os"
	"path/filepath"

	"rpyscope/internal/config"
	"rpyscope/internal/editor"
	"rpyscope/internal/index"
	"rpyscope/internal/logging"
)

const (
	serverName    = "rpyscope"
	serverVersion = "0.1.0"
)

func main() {
	logger := logging.Default("rpyscope")

	root, err := os.Getwd()
	if err != nil {
		logger.Error("cannot determine working directory", "error", err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		root, err = filepath.Abs(os.Args[1])
		if err != nil {
			logger.Error("invalid project path", "error", err)
			os.Exit(1)
		}
	}

	cfg := config.LoadIndexConfigFromEnv()
	dbPath := cfg.DBPathFor(root)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		logger.Error("no symbol index found, run 'rpyscope-index index' first", "path", dbPath)
		os.Exit(1)
	}

	idx, err := index.NewIndex(dbPath)
	if err != nil {
		logger.Error("opening index failed", "error", err)
		os.Exit(1)
	}
	defer idx.Close()
	idx.SetExtensions(cfg.Extensions)

	server := editor.NewServer(serverName, serverVersion, idx)

	logger.Info("starting editor server", "name", serverName, "version", serverVersion, "project", root)

	if err := server.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
