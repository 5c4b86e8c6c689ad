package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rpyscope/internal/config"
	"rpyscope/internal/index"
	"rpyscope/internal/logging"
)

var logger *slog.Logger

const version = "0.1.0"

func main() {
	logger = logging.Default("rpyscope-index")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "index":
		runIndex(os.Args[2:])

	case "stats":
		runStats(os.Args[2:])

	case "version":
		fmt.Printf("rpyscope-index v%s\n", version)

	case "help", "-h", "--help":
		printUsage()

	default:
		logger.Error("unknown command", "command", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	force := fs.Bool("force", false, "Force full reindex")
	fs.Parse(args)

	path := "."
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		logger.Error("invalid path", "error", err)
		os.Exit(1)
	}

	cfg := config.LoadIndexConfigFromEnv()
	dbPath := cfg.DBPathFor(absPath)

	logger.Info("indexing", "path", absPath, "database", cfg.String())

	start := time.Now()

	idx, err := index.NewIndex(dbPath)
	if err != nil {
		logger.Error("opening index failed", "error", err)
		os.Exit(1)
	}
	defer idx.Close()
	idx.SetExtensions(cfg.Extensions)

	if *force {
		logger.Info("running full reindex")
		if err := idx.FullReindex(absPath); err != nil {
			logger.Error("indexing failed", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("running incremental index")
		if err := idx.Update(absPath); err != nil {
			logger.Error("indexing failed", "error", err)
			os.Exit(1)
		}
	}

	symbolCount, fileCount, err := idx.Stats()
	if err != nil {
		logger.Warn("could not get stats", "error", err)
	} else {
		elapsed := time.Since(start)
		logger.Info("indexing complete",
			"symbols", symbolCount,
			"files", fileCount,
			"duration", elapsed.Round(time.Millisecond))
	}
}

func runStats(args []string) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		logger.Error("invalid path", "error", err)
		os.Exit(1)
	}

	cfg := config.LoadIndexConfigFromEnv()
	dbPath := cfg.DBPathFor(absPath)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		logger.Error("no index found, run 'index' first")
		os.Exit(1)
	}

	idx, err := index.NewIndex(dbPath)
	if err != nil {
		logger.Error("opening index failed", "error", err)
		os.Exit(1)
	}
	defer idx.Close()

	symbolCount, fileCount, err := idx.Stats()
	if err != nil {
		logger.Error("getting stats failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("Symbols: %d\n", symbolCount)
	fmt.Printf("Files: %d\n", fileCount)
}

func printUsage() {
	fmt.Println(`rpyscope-index - Ren'Py script symbol indexer

Usage:
  rpyscope-index index [--force] [path]   Index script definitions
  rpyscope-index stats [path]             Show index statistics
  rpyscope-index version                  Print version
  rpyscope-index help                     Show this help

Index Options:
  --force    Force full reindex (default: incremental)

Environment Variables:
  RPYSCOPE_DB_PATH      SQLite database path override
  RPYSCOPE_SCAN_EXTS    Extensions to index [default: .rpy,.rpym]
  RPYSCOPE_LOG_LEVEL    Log level (debug, info, warn, error) [default: info]
  RPYSCOPE_LOG_FORMAT   Output format (text, json) [default: text]

Database:
  Default: SQLite stored in .rpyscope/symbols.db relative to the project.`)
}
