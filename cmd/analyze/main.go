// Command analyze deals the presets in the project's configs directory and
// prints quick, human-readable heuristics about each deal: how deeply the aces
// are buried, how many kings sit on top of other cards, how much of the board
// is already in order and how many moves are open at the start.
//
// Arguments select what to analyze instead: numbers are deals under the
// classic preset, anything else is a preset name looked up in configs:
//
//	go run ./cmd/analyze 617 11982 practice
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/wricardo/freecell/game/engine"
)

// AceDepth is the number of cards covering an ace in the opening deal
type AceDepth struct {
	Card   engine.Card
	Column int
	Depth  int
}

// DealAnalysis summarizes the opening position of one deal
type DealAnalysis struct {
	Name            string
	Seed            int64
	Aces            []AceDepth
	BuriedKings     int
	OrderedCards    int
	FoundationReady int
	OpenMoves       int
	MaxMovable      int
}

// Score is a rough difficulty estimate; higher is harder
func (a DealAnalysis) Score() int {
	score := 2 * a.BuriedKings
	for _, ace := range a.Aces {
		score += ace.Depth
	}
	return score - a.OrderedCards - a.FoundationReady
}

// Rating buckets Score into easy, medium and hard
func (a DealAnalysis) Rating() string {
	switch score := a.Score(); {
	case score < 15:
		return "easy"
	case score < 25:
		return "medium"
	default:
		return "hard"
	}
}

func main() {
	out := os.Stdout

	if len(os.Args) > 1 {
		for _, arg := range os.Args[1:] {
			analyzeArg(out, "configs", arg)
		}
		return
	}

	files, err := presetFiles("configs")
	if err != nil {
		fmt.Fprintf(out, "Error finding presets: %v\n", err)
		os.Exit(1)
	}
	for _, file := range files {
		fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeConfig(out, file)
	}
}

// presetFiles lists the preset files in dir in name order
func presetFiles(dir string) ([]string, error) {
	var files []string
	for _, ext := range engine.ConfigExtensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// analyzeArg reports on a deal number or on a preset named in dir
func analyzeArg(w io.Writer, dir, arg string) {
	seed, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintf(w, "\n=== Analyzing preset %s ===\n", arg)
		config, err := engine.LoadConfigByName(dir, arg)
		if err != nil {
			fmt.Fprintf(w, "Error loading preset: %v\n", err)
			return
		}
		if err := analyzeDeal(w, config); err != nil {
			fmt.Fprintf(w, "Error dealing: %v\n", err)
		}
		return
	}
	if seed <= 0 {
		fmt.Fprintf(w, "Skipping %q: seeds are positive integers\n", arg)
		return
	}

	fmt.Fprintf(w, "\n=== Analyzing deal #%d ===\n", seed)
	game := engine.NewEngineWithDefaults()
	game.NewGameWithSeed(seed)
	analysis := analyze(game)
	analysis.Name = engine.DefaultGameConfig().Name
	report(w, analysis, false)
}

func analyzeConfig(w io.Writer, path string) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		fmt.Fprintf(w, "Error loading preset: %v\n", err)
		return
	}
	if err := analyzeDeal(w, config); err != nil {
		fmt.Fprintf(w, "Error dealing: %v\n", err)
	}
}

func analyzeDeal(w io.Writer, config *engine.GameConfig) error {
	game, err := engine.NewEngine(config)
	if err != nil {
		return err
	}
	analysis := analyze(game)
	analysis.Name = config.Name
	report(w, analysis, config.Seed == 0)
	return nil
}

// analyze inspects the opening position of game
func analyze(game *engine.GameEngine) DealAnalysis {
	board := game.Board()
	analysis := DealAnalysis{
		Seed:       game.Seed(),
		OpenMoves:  len(game.PossibleMoves()),
		MaxMovable: board.MaxMovableCards(),
	}

	for i := 0; i < engine.NumTableau; i++ {
		column := board.Column(i)
		if len(column) == 0 {
			continue
		}

		for row, card := range column {
			switch card.Rank {
			case engine.Ace:
				analysis.Aces = append(analysis.Aces, AceDepth{Card: card, Column: i, Depth: len(column) - 1 - row})
			case engine.King:
				if row > 0 {
					analysis.BuriedKings++
				}
			}
		}

		// Longest ordered run ending at the top card
		for row := range column {
			if run := engine.DetectSequence(column, row); row+len(run) == len(column) {
				if len(run) > 1 {
					analysis.OrderedCards += len(run)
				}
				break
			}
		}

		top := column[len(column)-1]
		for f := 0; f < engine.NumFoundations; f++ {
			if board.CanMove(top, engine.Foundation(f)) {
				analysis.FoundationReady++
				break
			}
		}
	}

	sort.Slice(analysis.Aces, func(i, j int) bool {
		return analysis.Aces[i].Depth < analysis.Aces[j].Depth
	})
	return analysis
}

func report(w io.Writer, a DealAnalysis, random bool) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	if random {
		fmt.Fprintf(w, "Deal: #%d (random preset, this deal only)\n", a.Seed)
	} else {
		fmt.Fprintf(w, "Deal: #%d\n", a.Seed)
	}
	fmt.Fprintf(w, "Open Moves: %d\n", a.OpenMoves)
	fmt.Fprintf(w, "Max Movable: %d\n", a.MaxMovable)
	fmt.Fprintf(w, "Ordered Cards: %d\n", a.OrderedCards)

	for _, ace := range a.Aces {
		fmt.Fprintf(w, "Ace %s: column %d under %d cards\n", ace.Card, ace.Column, ace.Depth)
	}

	if a.FoundationReady > 0 {
		fmt.Fprintf(w, "✅ %d card(s) can go to a foundation right away\n", a.FoundationReady)
	} else {
		fmt.Fprintf(w, "⚠️  WARNING: no ace is uncovered at the start\n")
	}
	if a.BuriedKings > 0 {
		fmt.Fprintf(w, "⚠️  %d king(s) sit on top of other cards\n", a.BuriedKings)
	}

	fmt.Fprintf(w, "Difficulty: %s (score %d)\n", a.Rating(), a.Score())
}
