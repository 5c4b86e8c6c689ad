// Package daemon provides background indexing for rpyscope. It watches
// registered projects for script changes and re-scans them into their
// per-project symbol databases.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"rpyscope/internal/config"
	"rpyscope/internal/index"
	"rpyscope/internal/logging"
	"rpyscope/internal/registry"

	"github.com/fsnotify/fsnotify"
)

// Daemon watches project directories and keeps their symbol indexes fresh.
type Daemon struct {
	registry    *registry.Registry
	indexCfg    config.IndexConfig
	watcher     *fsnotify.Watcher
	indexQueue  chan string
	debounceMap map[string]*time.Timer
	debounceMu  sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger
	logFile     *os.File
	startedAt   time.Time
	exts        map[string]bool
}

// DaemonStatus is the state reported over IPC.
type DaemonStatus struct {
	Running         bool      `json:"running"`
	PID             int       `json:"pid"`
	StartedAt       time.Time `json:"started_at"`
	WatchedProjects int       `json:"watched_projects"`
	TotalWatches    int       `json:"total_watches"`
}

// Config holds daemon configuration.
type Config struct {
	DebounceMs int
	LogPath    string
	PIDPath    string
	SocketPath string
}

// DefaultConfig returns the default daemon configuration.
func DefaultConfig() Config {
	configDir := registry.DefaultConfigDir()
	return Config{
		DebounceMs: registry.DefaultDebounceMs,
		LogPath:    filepath.Join(configDir, "daemon.log"),
		PIDPath:    filepath.Join(configDir, "daemon.pid"),
		SocketPath: DefaultSocketPath(),
	}
}

// New creates a daemon instance.
func New(reg *registry.Registry, cfg Config) (*Daemon, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	var logFile *os.File
	var logger *slog.Logger
	if cfg.LogPath != "" {
		logFile, err = os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			watcher.Close()
			cancel()
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		logCfg := logging.FromEnv("rpyscope-daemon")
		logCfg.Output = logFile
		logger = logging.New(logCfg)
	} else {
		logger = logging.Default("rpyscope-daemon")
	}

	indexCfg := config.LoadIndexConfigFromEnv()
	exts := make(map[string]bool, len(indexCfg.Extensions))
	for _, e := range indexCfg.Extensions {
		exts[e] = true
	}

	return &Daemon{
		registry:    reg,
		indexCfg:    indexCfg,
		watcher:     watcher,
		indexQueue:  make(chan string, 100),
		debounceMap: make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
		logFile:     logFile,
		exts:        exts,
	}, nil
}

// Run starts the daemon and blocks until shutdown.
func (d *Daemon) Run(cfg Config) error {
	d.logger.Info("daemon starting")
	d.startedAt = time.Now()

	if err := d.writePIDFile(cfg.PIDPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer os.Remove(cfg.PIDPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	if err := d.watchAllProjects(); err != nil {
		d.logger.Warn("error watching projects", "error", err)
	}

	ipcServer, err := NewIPCServer(cfg.SocketPath, d)
	if err != nil {
		return fmt.Errorf("starting IPC server: %w", err)
	}
	defer ipcServer.Close()

	go ipcServer.Serve(d.ctx)
	go d.indexWorker()
	go d.watcherLoop()

	d.logger.Info("daemon started", "pid", os.Getpid())

	select {
	case sig := <-sigChan:
		d.logger.Info("received signal", "signal", sig)
	case <-d.ctx.Done():
		d.logger.Info("context cancelled")
	}

	d.logger.Info("daemon shutting down")
	d.cancel()
	d.watcher.Close()
	if d.logFile != nil {
		d.logFile.Close()
	}

	return nil
}

// Stop signals the daemon to shut down.
func (d *Daemon) Stop() {
	d.cancel()
}

// Status returns the current daemon status.
func (d *Daemon) Status() DaemonStatus {
	return DaemonStatus{
		Running:         true,
		PID:             os.Getpid(),
		StartedAt:       d.startedAt,
		WatchedProjects: len(d.registry.GetWatchedProjects()),
		TotalWatches:    len(d.watcher.WatchList()),
	}
}

func (d *Daemon) watchAllProjects() error {
	projects := d.registry.GetWatchedProjects()
	d.logger.Info("watching projects", "count", len(projects))

	for _, p := range projects {
		if err := d.watchProject(p.Path); err != nil {
			d.logger.Error("failed to watch project", "path", p.Path, "error", err)
		}
	}
	return nil
}

// maxWatchesPerProject limits watch descriptors per project.
const maxWatchesPerProject = 1000

// watchProject adds watches for every non-ignored directory in a project.
func (d *Daemon) watchProject(projectPath string) error {
	count := 0
	var limitReached bool

	gi := index.LoadGitignore(projectPath)

	err := filepath.WalkDir(projectPath, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if !entry.IsDir() {
			return nil
		}
		if index.IsIgnoredDir(entry.Name()) {
			return filepath.SkipDir
		}
		if gi != nil {
			relPath, relErr := filepath.Rel(projectPath, path)
			if relErr == nil && relPath != "." && gi.MatchesPath(relPath+"/") {
				return filepath.SkipDir
			}
		}

		if count >= maxWatchesPerProject {
			if !limitReached {
				d.logger.Warn("reached max watches limit", "limit", maxWatchesPerProject, "project", projectPath)
				limitReached = true
			}
			return filepath.SkipDir
		}
		if err := d.watcher.Add(path); err != nil {
			return nil
		}
		count++
		return nil
	})
	d.logger.Debug("added watches", "count", count, "project", projectPath)
	return err
}

func (d *Daemon) unwatchProject(projectPath string) error {
	for _, path := range d.watcher.WatchList() {
		if isSubpath(path, projectPath) {
			d.watcher.Remove(path)
		}
	}
	return nil
}

func (d *Daemon) watcherLoop() {
	debounceMs := d.registry.Settings().DebounceMs
	if debounceMs <= 0 {
		debounceMs = registry.DefaultDebounceMs
	}
	debounceDuration := time.Duration(debounceMs) * time.Millisecond

	for {
		select {
		case <-d.ctx.Done():
			return
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			d.handleEvent(event, debounceDuration)
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Error("watcher error", "error", err)
		}
	}
}

// handleEvent debounces file system events per project before queueing a
// reindex.
func (d *Daemon) handleEvent(event fsnotify.Event, debounceDuration time.Duration) {
	if !d.isScriptFile(event.Name) && !event.Has(fsnotify.Create) {
		return
	}

	// New directories need a watch of their own.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !index.IsIgnoredDir(filepath.Base(event.Name)) {
				d.watcher.Add(event.Name)
			}
			return
		}
		if !d.isScriptFile(event.Name) {
			return
		}
	}

	project := d.findProjectForPath(event.Name)
	if project == "" {
		return
	}

	d.debounceMu.Lock()
	if timer, ok := d.debounceMap[project]; ok {
		timer.Stop()
	}
	d.debounceMap[project] = time.AfterFunc(debounceDuration, func() {
		d.debounceMu.Lock()
		delete(d.debounceMap, project)
		d.debounceMu.Unlock()

		select {
		case d.indexQueue <- project:
			d.logger.Debug("queued reindex", "project", project)
		default:
			d.logger.Warn("index queue full, skipping", "project", project)
		}
	})
	d.debounceMu.Unlock()
}

func (d *Daemon) findProjectForPath(path string) string {
	for _, p := range d.registry.GetWatchedProjects() {
		if isSubpath(path, p.Path) {
			return p.Path
		}
	}
	return ""
}

func (d *Daemon) indexWorker() {
	for {
		select {
		case <-d.ctx.Done():
			return
		case projectPath := <-d.indexQueue:
			d.runIndex(projectPath)
		}
	}
}

// runIndex re-scans a project into its symbol database and refreshes the
// registry stats.
func (d *Daemon) runIndex(projectPath string) {
	d.logger.Info("indexing", "project", projectPath)

	dbPath := d.indexCfg.DBPathFor(projectPath)
	idx, err := index.NewIndex(dbPath)
	if err != nil {
		d.logger.Error("opening index failed", "project", projectPath, "error", err)
		return
	}
	defer idx.Close()
	idx.SetExtensions(d.indexCfg.Extensions)

	if err := idx.Update(projectPath); err != nil {
		d.logger.Error("index failed", "project", projectPath, "error", err)
		return
	}

	symbols, files, err := idx.Stats()
	if err == nil {
		stats := registry.IndexStats{Symbols: symbols, Files: files}
		if info, statErr := os.Stat(dbPath); statErr == nil {
			stats.DBSizeBytes = info.Size()
		}
		if err := d.registry.UpdateStats(projectPath, stats); err != nil {
			d.logger.Error("failed to update registry stats", "error", err)
		}
	}

	d.logger.Info("index completed", "project", projectPath)

	if err := d.registry.SetLastIndexed(projectPath); err != nil {
		d.logger.Error("failed to update registry", "error", err)
	}
}

// AddProject registers a project and starts watching it.
func (d *Daemon) AddProject(projectPath string) error {
	if err := d.registry.Add(projectPath); err != nil {
		return err
	}
	return d.watchProject(projectPath)
}

// RemoveProject stops watching a project and unregisters it.
func (d *Daemon) RemoveProject(projectPath string) error {
	if err := d.unwatchProject(projectPath); err != nil {
		return err
	}
	return d.registry.Remove(projectPath)
}

// TriggerReindex queues a project for immediate reindexing.
func (d *Daemon) TriggerReindex(projectPath string) error {
	select {
	case d.indexQueue <- projectPath:
		return nil
	default:
		return fmt.Errorf("index queue full")
	}
}

func (d *Daemon) writePIDFile(path string) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}

// isScriptFile reports whether the path has an indexed script extension.
func (d *Daemon) isScriptFile(path string) bool {
	return d.exts[strings.ToLower(filepath.Ext(path))]
}

// isSubpath reports whether child is under parent.
func isSubpath(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return len(rel) > 0 && rel[0] != '.'
}
