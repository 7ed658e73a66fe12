package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ConfigExtensions lists preset file extensions in lookup order
var ConfigExtensions = []string{".json", ".toml"}

// ValidateGameConfig validates a game preset
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.Seed < 0 {
		return fmt.Errorf("config validation: seed must be non-negative, got %d", config.Seed)
	}
	if config.HistoryLimit < 0 || config.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("config validation: history_limit must be between 0 and %d, got %d", MaxHistoryLimit, config.HistoryLimit)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if strings.Count(config.Messages.Victory, "%d") > 1 {
		return fmt.Errorf("config validation: messages.victory must contain at most one %%d")
	}
	rest := strings.NewReplacer("%%", "", "%d", "").Replace(config.Messages.Victory)
	if strings.Contains(rest, "%") {
		return fmt.Errorf("config validation: messages.victory may only use %%d for the move count")
	}

	return nil
}

// DefaultGameConfig returns the built-in classic preset
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:         "Classic",
		Description:  "Standard FreeCell: 8 columns, 4 free cells, 10 undos",
		HistoryLimit: DefaultHistoryLimit,
	}
	config.Messages.Welcome = "Welcome to FreeCell! Build each foundation from Ace to King."
	config.Messages.Victory = "You won in %d moves!"
	config.Messages.InvalidMove = "That move is not allowed"
	config.Messages.NothingToUndo = "Nothing to undo"
	config.Messages.NoHint = "No foundation move available"
	return config
}

// NoHintMessage returns the preset's text for an empty hint
func (c *GameConfig) NoHintMessage() string {
	if c.Messages.NoHint == "" {
		return "No hint available"
	}
	return c.Messages.NoHint
}

// DecodeGameConfig parses a preset in the format implied by ext (".json" or ".toml")
func DecodeGameConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	return &config, nil
}

// LoadGameConfig loads and validates a preset file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := DecodeGameConfig(data, filepath.Ext(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigByName loads a preset by name from dir, trying each known extension
func LoadConfigByName(dir, configName string) (*GameConfig, error) {
	base := strings.TrimSuffix(configName, filepath.Ext(configName))

	for _, ext := range ConfigExtensions {
		configPath := filepath.Join(dir, base+ext)
		if _, err := os.Stat(configPath); err != nil {
			continue
		}

		config, err := LoadGameConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
		}
		return config, nil
	}

	return nil, fmt.Errorf("config file '%s' not found", configName)
}
