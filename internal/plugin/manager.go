package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

var (
	// ErrPluginNotFound is returned when a requested plugin cannot be found.
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrActionNotSupported is returned when a hook names an action or event
	// the plugin's manifest does not declare.
	ErrActionNotSupported = errors.New("action not supported")
)

// ManifestFile is the manifest name looked up in each plugin directory.
const ManifestFile = "plugin.json"

// Manager manages plugin discovery and access.
type Manager struct {
	pluginDir string
	plugins   map[string]*Plugin
	skipped   map[string]error
	mu        sync.RWMutex
}

// NewManager creates a new plugin Manager with the given plugin directory.
func NewManager(pluginDir string) *Manager {
	return &Manager{
		pluginDir: pluginDir,
		plugins:   make(map[string]*Plugin),
		skipped:   make(map[string]error),
	}
}

// Discover rescans the plugin directory. Each subdirectory holding a
// manifest is a plugin; directories with unreadable or incomplete manifests
// are skipped and reported by Skipped. A missing plugin directory yields no
// plugins.
func (m *Manager) Discover() error {
	plugins := make(map[string]*Plugin)
	skipped := make(map[string]error)

	entries, err := os.ReadDir(m.pluginDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) && !isNotDir(m.pluginDir) {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(m.pluginDir, entry.Name())
		p, err := loadPlugin(dir)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Not a plugin directory.
		case err != nil:
			skipped[entry.Name()] = err
		default:
			plugins[p.Manifest.Name] = p
		}
	}

	m.mu.Lock()
	m.plugins = plugins
	m.skipped = skipped
	m.mu.Unlock()
	return nil
}

// Skipped returns the directories ignored by the last Discover and why.
func (m *Manager) Skipped() map[string]error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]error, len(m.skipped))
	for k, v := range m.skipped {
		out[k] = v
	}
	return out
}

// loadPlugin reads dir's manifest. The executable must stay inside dir.
func loadPlugin(dir string) (*Plugin, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	if manifest.Name == "" || manifest.Executable == "" {
		return nil, fmt.Errorf("%s: name and executable are required", ManifestFile)
	}
	if !filepath.IsLocal(manifest.Executable) {
		return nil, fmt.Errorf("%s: executable %q is outside the plugin directory", ManifestFile, manifest.Executable)
	}

	return &Plugin{
		Manifest:   manifest,
		Path:       dir,
		Executable: filepath.Join(dir, manifest.Executable),
	}, nil
}

func isNotDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Get returns a plugin by name.
// Returns ErrPluginNotFound if the plugin does not exist.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugin, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}

	return plugin, nil
}

// List returns all discovered plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, plugin := range m.plugins {
		plugins = append(plugins, plugin)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})

	return plugins
}

// Resolve returns the plugin that should run action for event.
func (m *Manager) Resolve(name, action, event string) (*Plugin, error) {
	plugin, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	if !plugin.Manifest.Supports(action) {
		return nil, fmt.Errorf("%w: %s/%s", ErrActionNotSupported, name, action)
	}
	if !plugin.Manifest.Handles(event) {
		return nil, fmt.Errorf("%w: %s does not handle %q", ErrActionNotSupported, name, event)
	}
	return plugin, nil
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.pluginDir
}
