package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrPluginNotFound is returned when a requested plugin cannot be found.
var ErrPluginNotFound = errors.New("plugin not found")

// Manager discovers and indexes action plugin bundles. A bundle is a
// subdirectory of the plugin root carrying a plugin.json manifest that
// names its executable and the jutsu actions it handles.
type Manager struct {
	dir     string
	mu      sync.RWMutex
	plugins map[string]*Plugin
}

// NewManager creates a Manager rooted at the given plugin directory.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:     dir,
		plugins: make(map[string]*Plugin),
	}
}

// Discover rescans the plugin root and replaces the current index.
// A missing root is not an error; bundles with unreadable or invalid
// manifests are skipped.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plugins = make(map[string]*Plugin)

	info, err := os.Stat(m.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := loadBundle(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			continue
		}
		m.plugins[p.Manifest.Name] = p
	}

	return nil
}

// loadBundle reads a bundle's manifest and resolves its executable path.
func loadBundle(path string) (*Plugin, error) {
	data, err := os.ReadFile(filepath.Join(path, "plugin.json"))
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest in %s: %w", path, err)
	}

	return &Plugin{
		Manifest:   manifest,
		Path:       path,
		Executable: filepath.Join(path, manifest.Executable),
	}, nil
}

// Get returns a plugin by name.
// Returns ErrPluginNotFound if the plugin does not exist.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}
	return p, nil
}

// List returns every discovered plugin.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, p := range m.plugins {
		plugins = append(plugins, p)
	}
	return plugins
}

// Supporting returns the plugins whose manifests declare the given
// action, such as the action fired when a jutsu completes.
func (m *Manager) Supporting(action string) []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var plugins []*Plugin
	for _, p := range m.plugins {
		for _, a := range p.Manifest.Actions {
			if a == action {
				plugins = append(plugins, p)
				break
			}
		}
	}
	return plugins
}

// PluginDir returns the plugin root directory.
func (m *Manager) PluginDir() string {
	return m.dir
}
