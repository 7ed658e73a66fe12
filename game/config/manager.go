package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is the preset used for sessions created without one
const DefaultConfigName = "classic"

// Manager handles preset loading and caching
type Manager struct {
	configDir     string
	defaultName   string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir:   configDir,
		defaultName: DefaultConfigName,
		configs:     make(map[string]*engine.GameConfig),
	}

	m.loadDefaultConfig()
	return m, nil
}

// configID strips a known preset extension from name
func configID(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if slices.Contains(engine.ConfigExtensions, ext) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// LoadConfig loads a preset by name, with or without its extension. JSON
// files win over TOML files of the same name.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	config, err := m.readConfig(id)
	if err != nil {
		return nil, err
	}

	m.configs[id] = config
	return config, nil
}

// readConfig reads, decodes and validates the preset file for id
func (m *Manager) readConfig(id string) (*engine.GameConfig, error) {
	for _, ext := range engine.ConfigExtensions {
		configPath := filepath.Join(m.configDir, id+ext)

		data, err := os.ReadFile(configPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config, err := engine.DecodeGameConfig(data, ext)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}

		if err := engine.ValidateGameConfig(config); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return config, nil
	}

	return nil, ErrConfigNotFound
}

// ListConfigs returns information about all valid presets, sorted by config ID
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !slices.Contains(engine.ConfigExtensions, ext) {
			continue
		}

		name := configID(entry.Name())
		if seen[name] {
			continue
		}

		config, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[name] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:     entry.Name(),
			ConfigID:     name,
			Name:         config.Name,
			Description:  config.Description,
			Seed:         config.Seed,
			HistoryLimit: config.HistoryLimit,
		})
	}

	slices.SortFunc(configs, func(a, b *service.ConfigInfo) int {
		return strings.Compare(a.ConfigID, b.ConfigID)
	})

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name. The choice survives
// cache refreshes.
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = configID(name)
	m.defaultConfig = config
	return nil
}

// Count returns the number of cached presets
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// RefreshCache reloads all cached configurations from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// loadDefaultConfig picks the default preset (classic unless SetDefault chose
// another), then the first valid preset, then the built-in default. Must be
// called without m.mu held.
func (m *Manager) loadDefaultConfig() {
	m.mu.RLock()
	name := m.defaultName
	m.mu.RUnlock()

	config, err := m.LoadConfig(name)
	if err != nil {
		config = nil
		if configs, listErr := m.ListConfigs(); listErr == nil && len(configs) > 0 {
			config, _ = m.LoadConfig(configs[0].ConfigID)
		}
		if config == nil {
			config = engine.DefaultGameConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig writes a preset to disk as JSON
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	// Validate config before saving
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || id != filepath.Base(id) {
		return fmt.Errorf("%w: bad preset name %q", ErrInvalidConfig, name)
	}

	configPath := filepath.Join(m.configDir, id+".json")

	// Marshal config to JSON with indentation
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// Watch refreshes the cache whenever a preset file in the config directory
// changes. It blocks until ctx is done.
func (m *Manager) Watch(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(m.configDir); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	const changes = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(event.Name))
			if event.Op&changes == 0 || !slices.Contains(engine.ConfigExtensions, ext) {
				continue
			}
			fmt.Printf("[CONFIG] %s changed, refreshing presets\n", filepath.Base(event.Name))
			m.RefreshCache()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("[WARN] Config watcher error: %v\n", err)
		}
	}
}
