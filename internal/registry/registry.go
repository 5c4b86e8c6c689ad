// Package registry tracks the Ren'Py projects known to the daemon: where
// they live, when they were last indexed, and whether they are watched.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

const (
	// RegistryVersion is the current schema version of registry.json.
	RegistryVersion = 1
	// DefaultDebounceMs is the default debounce window for file watching.
	DefaultDebounceMs = 500
	// DefaultMaxProjects caps how many projects the daemon will track.
	DefaultMaxProjects = 50
)

// IndexStats holds statistics about a project's symbol index.
type IndexStats struct {
	Symbols     int   `json:"symbols"`
	Files       int   `json:"files"`
	DBSizeBytes int64 `json:"db_size_bytes"`
}

// Project is a registered Ren'Py project.
type Project struct {
	Path         string     `json:"path"`
	Name         string     `json:"name"`
	AddedAt      time.Time  `json:"added_at"`
	LastIndexed  *time.Time `json:"last_indexed,omitempty"`
	IndexStats   IndexStats `json:"index_stats"`
	WatchEnabled bool       `json:"watch_enabled"`
}

// Settings holds global registry settings.
type Settings struct {
	AutoWatch   bool `json:"auto_watch"`
	DebounceMs  int  `json:"debounce_ms"`
	MaxProjects int  `json:"max_projects"`
}

type registryData struct {
	Version  int       `json:"version"`
	Projects []Project `json:"projects"`
	Settings Settings  `json:"settings"`
}

// Registry is the persistent project registry backed by a JSON file.
type Registry struct {
	path string
	data *registryData
	mu   sync.RWMutex
}

// DefaultConfigDir returns the configuration directory, honoring
// XDG_CONFIG_HOME.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rpyscope")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rpyscope")
}

// DefaultRegistryPath returns the default registry file path.
func DefaultRegistryPath() string {
	return filepath.Join(DefaultConfigDir(), "registry.json")
}

// NewRegistry creates or loads the registry from the default location.
func NewRegistry() (*Registry, error) {
	return NewRegistryAt(DefaultRegistryPath())
}

// NewRegistryAt creates or loads the registry from a specific path.
func NewRegistryAt(path string) (*Registry, error) {
	r := &Registry{
		path: path,
		data: &registryData{
			Version:  RegistryVersion,
			Projects: []Project{},
			Settings: Settings{
				AutoWatch:   true,
				DebounceMs:  DefaultDebounceMs,
				MaxProjects: DefaultMaxProjects,
			},
		},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := r.load(); err != nil {
			return nil, fmt.Errorf("loading registry: %w", err)
		}
	}

	return r, nil
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, r.data)
}

func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0644)
}

// Add registers a project. Adding an already registered path is a no-op.
func (r *Registry) Add(projectPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	for _, p := range r.data.Projects {
		if p.Path == absPath {
			return nil
		}
	}

	if len(r.data.Projects) >= r.data.Settings.MaxProjects {
		return fmt.Errorf("maximum number of projects (%d) reached", r.data.Settings.MaxProjects)
	}

	r.data.Projects = append(r.data.Projects, Project{
		Path:         absPath,
		Name:         filepath.Base(absPath),
		AddedAt:      time.Now(),
		WatchEnabled: r.data.Settings.AutoWatch,
	})

	return r.save()
}

// Remove unregisters a project.
func (r *Registry) Remove(projectPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	for i, p := range r.data.Projects {
		if p.Path == absPath {
			r.data.Projects = slices.Delete(r.data.Projects, i, i+1)
			return r.save()
		}
	}

	return fmt.Errorf("project not found: %s", projectPath)
}

// List returns a copy of all registered projects.
func (r *Registry) List() []Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Project, len(r.data.Projects))
	copy(result, r.data.Projects)
	return result
}

// Get returns the project registered at the given path.
func (r *Registry) Get(projectPath string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	for _, p := range r.data.Projects {
		if p.Path == absPath {
			proj := p
			return &proj, nil
		}
	}

	return nil, fmt.Errorf("project not found: %s", projectPath)
}

func (r *Registry) update(projectPath string, fn func(*Project)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	for i := range r.data.Projects {
		if r.data.Projects[i].Path == absPath {
			fn(&r.data.Projects[i])
			return r.save()
		}
	}

	return fmt.Errorf("project not found: %s", projectPath)
}

// UpdateStats records fresh index statistics for a project.
func (r *Registry) UpdateStats(projectPath string, stats IndexStats) error {
	return r.update(projectPath, func(p *Project) { p.IndexStats = stats })
}

// SetLastIndexed stamps the project with the current time.
func (r *Registry) SetLastIndexed(projectPath string) error {
	now := time.Now()
	return r.update(projectPath, func(p *Project) { p.LastIndexed = &now })
}

// SetWatchEnabled toggles file watching for a project.
func (r *Registry) SetWatchEnabled(projectPath string, enabled bool) error {
	return r.update(projectPath, func(p *Project) { p.WatchEnabled = enabled })
}

// GetWatchedProjects returns the projects with watching enabled.
func (r *Registry) GetWatchedProjects() []Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Project
	for _, p := range r.data.Projects {
		if p.WatchEnabled {
			result = append(result, p)
		}
	}
	return result
}

// Settings returns the current registry settings.
func (r *Registry) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.Settings
}

// AggregateStats sums index statistics across all projects.
func (r *Registry) AggregateStats() IndexStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total IndexStats
	for _, p := range r.data.Projects {
		total.Symbols += p.IndexStats.Symbols
		total.Files += p.IndexStats.Files
		total.DBSizeBytes += p.IndexStats.DBSizeBytes
	}
	return total
}

// Path returns the registry file path.
func (r *Registry) Path() string {
	return r.path
}
