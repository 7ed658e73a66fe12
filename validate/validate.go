// Command validate checks the game presets in a configs directory (../configs
// by default, or the first argument). For every .json and .toml file it checks:
//   - The file decodes in the format named by its extension
//   - Required fields and messages are present and history_limit is in range
//   - The victory message uses at most one %d
//   - The preset deals a complete 52-card board
//   - A seeded preset deals the same board every time
//
// Presets sharing a name are reported; the JSON file wins when loaded.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/freecell/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Name   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	ext := filepath.Ext(filePath)
	config, err := engine.DecodeGameConfig(data, ext)
	if err != nil {
		result.fail("Invalid %s: %v", strings.ToUpper(strings.TrimPrefix(ext, ".")), err)
		return result
	}
	result.Name = config.Name

	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	optional := map[string]string{
		"invalid_move":    config.Messages.InvalidMove,
		"nothing_to_undo": config.Messages.NothingToUndo,
		"no_hint":         config.Messages.NoHint,
	}
	keys := make([]string, 0, len(optional))
	for key := range optional {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if optional[key] == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("⚠ messages.%s not set, the built-in text is used", key))
		}
	}

	validateDeal(config, &result)
	if !result.Valid {
		return result
	}

	result.info("Name: %s", config.Name)
	if config.Seed == 0 {
		result.info("Deal: random")
	} else {
		result.info("Deal: #%d", config.Seed)
	}
	limit := config.HistoryLimit
	if limit == 0 {
		limit = engine.DefaultHistoryLimit
	}
	result.info("Undo depth: %d", limit)

	return result
}

// validateDeal deals the preset and checks the board holds each card exactly
// once. Seeded presets are dealt twice and must match.
func validateDeal(config *engine.GameConfig, result *ValidationResult) {
	game, err := engine.NewEngine(config)
	if err != nil {
		result.fail("Cannot deal: %v", err)
		return
	}

	board := game.Board()
	if n := board.CardCount(); n != engine.DeckSize {
		result.fail("Deal holds %d cards, expected %d", n, engine.DeckSize)
		return
	}

	seen := make(map[engine.Card]bool, engine.DeckSize)
	for i := 0; i < engine.NumTableau; i++ {
		for _, card := range board.Column(i) {
			if seen[card] {
				result.fail("Card %s dealt twice", card)
			}
			seen[card] = true
		}
	}
	if !result.Valid {
		return
	}
	result.info("Deal: %d cards, %d free cells, %d columns", engine.DeckSize, engine.NumFreeCells, engine.NumTableau)

	if config.Seed == 0 {
		return
	}
	again, err := engine.NewEngine(config)
	if err != nil {
		result.fail("Cannot deal: %v", err)
		return
	}
	for i := 0; i < engine.NumTableau; i++ {
		if !sameCards(board.Column(i), again.Column(i)) {
			result.fail("Seed %d dealt column %d differently on a second deal", config.Seed, i)
			return
		}
	}
	result.info("Reproducible: seed %d", config.Seed)
}

func sameCards(a, b []engine.Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// validateDir validates every preset in dir, in file name order, and flags
// presets that share a name
func validateDir(dir string) ([]ValidationResult, error) {
	var files []string
	for _, ext := range engine.ConfigExtensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, fmt.Errorf("finding %s presets: %w", ext, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	owners := make(map[string]string)
	for _, file := range files {
		result := validateConfig(file)
		if result.Name != "" {
			key := strings.ToLower(result.Name)
			if other, ok := owners[key]; ok {
				result.Errors = append(result.Errors, fmt.Sprintf("⚠ Name %q also used by %s", result.Name, other))
			} else {
				owners[key] = result.File
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// main validates ../configs (or the directory given as the first argument),
// printing a concise report and exiting with non-zero status if any preset
// is invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDir(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Printf("No presets found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
