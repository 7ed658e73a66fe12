package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/freecell/game/engine"
)

func createValidConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	config.Seed = 42
	config.Messages.Welcome = "Welcome!"
	config.Messages.Victory = "Won in %d moves!"
	return config
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

const tomlPreset = `name = "Relaxed"
description = "Fixed deal with a deep undo stack"
seed = 11982
history_limit = 50

[messages]
welcome = "Take your time."
victory = "Solved in %d moves."
`

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		defaultConfig := createValidConfig()
		defaultConfig.Name = "Classic"
		writeConfigFile(t, dir, "classic", defaultConfig)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected classic as default, got %q", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in default", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without presets, got error: %v", err)
		}
		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected default config to be available")
		}
		if err := engine.ValidateGameConfig(defaultConfig); err != nil {
			t.Errorf("Expected built-in default to be valid: %v", err)
		}
	})

	t.Run("first valid preset when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		os.WriteFile(filepath.Join(dir, "aaa.json"), []byte(`{"name": ""}`), 0644)
		other := createValidConfig()
		other.Name = "Beta"
		writeConfigFile(t, dir, "beta", other)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Beta" {
			t.Errorf("Expected Beta as default, got %q", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()

	easyConfig := createValidConfig()
	easyConfig.Name = "Easy"
	easyConfig.HistoryLimit = 50
	writeConfigFile(t, dir, "easy", easyConfig)

	if err := os.WriteFile(filepath.Join(dir, "relaxed.toml"), []byte(tomlPreset), 0644); err != nil {
		t.Fatalf("Failed to write toml preset: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Easy" || config.HistoryLimit != 50 {
			t.Errorf("Unexpected config %+v", config)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("easy.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
	})

	t.Run("load toml preset", func(t *testing.T) {
		config, err := manager.LoadConfig("relaxed")
		if err != nil {
			t.Fatalf("Failed to load toml config: %v", err)
		}
		if config.Name != "Relaxed" || config.Seed != 11982 || config.HistoryLimit != 50 {
			t.Errorf("Unexpected toml config %+v", config)
		}
		if config.Messages.Victory != "Solved in %d moves." {
			t.Errorf("Expected victory message from toml, got %q", config.Messages.Victory)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("easy")
		config2, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		if _, err := manager.LoadConfig("non-existent"); err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		if _, err := manager.LoadConfig("../easy"); err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": ""}`), 0644)
		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644)
		if _, err := manager.LoadConfig("malformed"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"classic", "easy", "hard"} {
		config := createValidConfig()
		config.Name = name
		writeConfigFile(t, dir, name, config)
	}
	os.WriteFile(filepath.Join(dir, "relaxed.toml"), []byte(tomlPreset), 0644)

	// Ignored: not a preset, and a broken one
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}

	want := []string{"classic", "easy", "hard", "relaxed"}
	if len(configList) != len(want) {
		t.Fatalf("Expected %d configs, got %d", len(want), len(configList))
	}
	for i, info := range configList {
		if info.ConfigID != want[i] {
			t.Errorf("Expected config %d to be %s, got %s", i, want[i], info.ConfigID)
		}
	}
	if last := configList[3]; last.Filename != "relaxed.toml" || last.Seed != 11982 {
		t.Errorf("Expected toml preset details, got %+v", last)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	config.Name = "Saved"
	if err := manager.SaveConfig("saved", config); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Fatalf("Expected saved.json on disk: %v", err)
	}

	loaded, err := engine.LoadGameConfig(filepath.Join(dir, "saved.json"))
	if err != nil {
		t.Fatalf("Failed to read saved preset: %v", err)
	}
	if loaded.Name != "Saved" || loaded.Seed != 42 {
		t.Errorf("Unexpected saved preset %+v", loaded)
	}

	invalid := createValidConfig()
	invalid.HistoryLimit = engine.MaxHistoryLimit + 1
	if err := manager.SaveConfig("bad", invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := manager.SaveConfig("../escape", config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for bad name, got %v", err)
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	config := createValidConfig()
	config.Name = "Classic"
	writeConfigFile(t, dir, "classic", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config.Description = "Updated"
	writeConfigFile(t, dir, "classic", config)

	done := make(chan struct{})
	go func() {
		manager.RefreshCache()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RefreshCache did not return")
	}

	if manager.GetDefault().Description != "Updated" {
		t.Errorf("Expected refreshed default, got %q", manager.GetDefault().Description)
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	classic := createValidConfig()
	classic.Name = "Classic"
	writeConfigFile(t, dir, "classic", classic)
	practice := createValidConfig()
	practice.Name = "Practice"
	writeConfigFile(t, dir, "practice", practice)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("missing"); err == nil {
		t.Error("Expected error for unknown preset")
	}
	if manager.GetDefault().Name != "Classic" {
		t.Errorf("Failed SetDefault should keep Classic, got %s", manager.GetDefault().Name)
	}

	if err := manager.SetDefault("practice.json"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Practice" {
		t.Errorf("Expected Practice, got %s", manager.GetDefault().Name)
	}

	manager.RefreshCache()
	if manager.GetDefault().Name != "Practice" {
		t.Errorf("Expected Practice to survive a refresh, got %s", manager.GetDefault().Name)
	}
}

func TestManager_Watch(t *testing.T) {
	dir := t.TempDir()
	config := createValidConfig()
	config.Name = "Classic"
	writeConfigFile(t, dir, "classic", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	watchErr := make(chan error, 1)
	go func() { watchErr <- manager.Watch(ctx) }()

	// Give the watcher a moment to register the directory
	time.Sleep(100 * time.Millisecond)

	config.Description = "Edited on disk"
	writeConfigFile(t, dir, "classic", config)

	deadline := time.Now().Add(3 * time.Second)
	for manager.GetDefault().Description != "Edited on disk" {
		if time.Now().After(deadline) {
			t.Fatal("Expected watcher to pick up the edited preset")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-watchErr; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = fmt.Sprintf("Config%d", i)
		writeConfigFile(t, dir, fmt.Sprintf("config%d", i), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if id%10 == 0 {
				manager.RefreshCache()
				return
			}
			if _, err := manager.LoadConfig(fmt.Sprintf("config%d", id%5+1)); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
}
