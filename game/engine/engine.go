package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Move log actions
const (
	ActionMove    = "move"
	ActionUndo    = "undo"
	ActionNewGame = "new_game"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game lifecycle
	NewGame() *GameState
	NewGameWithSeed(seed int64) *GameState
	GetState() *GameState
	GetConfig() *GameConfig

	// Selection and moves
	SelectRun(loc Location, row int) (*Selection, bool)
	AttemptMove(sel *Selection, target Location) MoveOutcome
	CancelSelection()
	ActiveSelection() *Selection
	Undo() bool
	Hint() (Hint, bool)
	PossibleMoves() []MoveCandidate

	// Read-only accessors
	Column(i int) []Card
	FreeCell(i int) (Card, bool)
	Foundation(i int) []Card
	MoveCount() int
	StartedAt() time.Time
	Elapsed() time.Duration
	IsWon() bool
	GameID() string
	Seed() int64

	// Move log
	GetMoveHistory() []MoveRecord
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize access.
type GameEngine struct {
	config    *GameConfig
	board     *Board
	history   *History
	selection *Selection

	gameID    string
	seed      int64
	moveCount int
	startedAt time.Time
	won       bool
	announced bool
	message   string

	moveLog    []MoveRecord
	totalMoves int

	now func() time.Time
}

// NewEngine creates a new game engine and deals the first game. A preset seed
// of 0 deals a random game.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config: config,
		now:    time.Now,
	}
	engine.deal(config.Seed)

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in classic preset
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("engine: default config invalid: %v", err))
	}
	return engine
}

// NewGame deals a fresh random game, clearing history, counters, and the won state
func (e *GameEngine) NewGame() *GameState {
	e.deal(0)
	return e.GetState()
}

// NewGameWithSeed deals a reproducible game; seed 0 picks a random one
func (e *GameEngine) NewGameWithSeed(seed int64) *GameState {
	e.deal(seed)
	return e.GetState()
}

func (e *GameEngine) deal(seed int64) {
	if seed == 0 {
		seed = randomSeed()
	}

	deck := NewDeck()
	Shuffle(deck, newRand(seed))

	e.board = Deal(deck)
	e.history = NewHistory(e.config.HistoryLimit)
	e.selection = nil
	e.gameID = uuid.NewString()
	e.seed = seed
	e.moveCount = 0
	e.startedAt = e.now()
	e.won = false
	e.announced = false
	e.message = e.config.Messages.Welcome

	e.record(MoveRecord{Action: ActionNewGame, Success: true})
}

// SelectRun picks up the run starting at row of a tableau column, or the top
// card of a free cell or foundation (row is ignored there). It returns false
// when nothing at loc is accessible.
func (e *GameEngine) SelectRun(loc Location, row int) (*Selection, bool) {
	run := e.board.sourceRun(loc, row)
	if run == nil {
		return nil, false
	}

	if loc.Zone != ZoneTableau {
		row = e.board.Height(loc) - 1
	}

	e.selection = &Selection{
		Card:   run[0],
		Source: loc,
		Row:    row,
		Run:    run,
	}
	return e.ActiveSelection(), true
}

// AttemptMove validates and, if legal, commits moving sel to target. The
// active selection is cleared either way and the board is untouched on rejection.
func (e *GameEngine) AttemptMove(sel *Selection, target Location) MoveOutcome {
	target.mustValidate()
	e.selection = nil

	if sel == nil {
		return e.reject(nil, target, nil, ReasonNoSelection)
	}
	sel.Source.mustValidate()

	if reason := e.validate(sel, target); reason != "" {
		return e.reject(&sel.Source, target, sel.Run, reason)
	}

	run := append([]Card(nil), sel.Run...)
	e.history.Push(Snapshot{Board: e.board.Clone(), MoveCount: e.moveCount})
	e.board.apply(sel.Source, run, target)
	e.moveCount++
	e.message = ""

	outcome := MoveOutcome{Accepted: true, Moved: run}
	if e.checkWin() {
		outcome.Won = true
	}

	from, to := sel.Source, target
	e.record(MoveRecord{Action: ActionMove, From: &from, To: &to, Cards: run, Success: true})

	return outcome
}

func (e *GameEngine) validate(sel *Selection, target Location) string {
	if e.won {
		return ReasonGameAlreadyWon
	}
	if len(sel.Run) == 0 {
		return ReasonEmptyRun
	}
	if sel.Source == target {
		return ReasonSameLocation
	}
	if !e.board.isTail(sel.Source, sel.Run) {
		return ReasonStaleSelection
	}
	return e.board.checkSequence(sel.Run, target)
}

func (e *GameEngine) reject(from *Location, target Location, run []Card, reason string) MoveOutcome {
	e.message = e.config.Messages.InvalidMove
	if e.message == "" {
		e.message = "Invalid move"
	}
	e.message = fmt.Sprintf("%s (%s)", e.message, reason)

	to := target
	e.record(MoveRecord{Action: ActionMove, From: from, To: &to, Cards: append([]Card(nil), run...), Reason: reason})

	return MoveOutcome{Accepted: false, Reason: reason}
}

// checkWin updates the won flag and reports whether this is the first time
// the current game has been completed
func (e *GameEngine) checkWin() bool {
	e.won = e.board.IsWon()
	if !e.won || e.announced {
		return false
	}

	e.announced = true
	e.message = e.config.Messages.Victory
	if strings.Contains(e.message, "%d") {
		e.message = fmt.Sprintf(e.message, e.moveCount)
	}
	return true
}

// CancelSelection drops the active selection; a no-op when there is none
func (e *GameEngine) CancelSelection() {
	e.selection = nil
}

// ActiveSelection returns a copy of the current selection, or nil
func (e *GameEngine) ActiveSelection() *Selection {
	if e.selection == nil {
		return nil
	}
	sel := *e.selection
	sel.Run = append([]Card(nil), e.selection.Run...)
	return &sel
}

// Undo restores the board and move counter from the latest snapshot. It
// returns false when there is nothing to undo.
func (e *GameEngine) Undo() bool {
	e.selection = nil

	snapshot, ok := e.history.Pop()
	if !ok {
		e.message = e.config.Messages.NothingToUndo
		if e.message == "" {
			e.message = "Nothing to undo"
		}
		return false
	}

	e.board = snapshot.Board
	e.moveCount = snapshot.MoveCount
	e.won = e.board.IsWon()
	e.message = ""

	e.record(MoveRecord{Action: ActionUndo, Success: true})
	return true
}

// Hint scans tableau tops in column order, then free cells in index order,
// and returns the first card that can go to a foundation. It does not change
// the game.
func (e *GameEngine) Hint() (Hint, bool) {
	sources := make([]Location, 0, NumTableau+NumFreeCells)
	for i := 0; i < NumTableau; i++ {
		sources = append(sources, Tableau(i))
	}
	for i := 0; i < NumFreeCells; i++ {
		sources = append(sources, FreeCell(i))
	}

	for _, from := range sources {
		card, ok := e.board.Top(from)
		if !ok {
			continue
		}
		for f := 0; f < NumFoundations; f++ {
			if e.board.CanMove(card, Foundation(f)) {
				return Hint{Card: card, From: from, Foundation: f}, true
			}
		}
	}

	return Hint{}, false
}

// PossibleMoves lists every legal single-step move on the current board.
// Equivalent empty targets are collapsed to the first empty free cell and the
// first empty column.
func (e *GameEngine) PossibleMoves() []MoveCandidate {
	if e.won {
		return nil
	}

	targets := e.distinctTargets()
	var moves []MoveCandidate

	try := func(from Location, row int) {
		run := e.board.sourceRun(from, row)
		if run == nil {
			return
		}
		for _, to := range targets {
			if to == from {
				continue
			}
			if e.board.checkSequence(run, to) == "" {
				moves = append(moves, MoveCandidate{From: from, Row: row, To: to, Cards: run})
			}
		}
	}

	for i := 0; i < NumTableau; i++ {
		from := Tableau(i)
		for row := 0; row < e.board.Height(from); row++ {
			try(from, row)
		}
	}
	for i := 0; i < NumFreeCells; i++ {
		try(FreeCell(i), 0)
	}

	return moves
}

func (e *GameEngine) distinctTargets() []Location {
	var targets []Location
	for i := 0; i < NumFoundations; i++ {
		targets = append(targets, Foundation(i))
	}

	emptyColumn := false
	for i := 0; i < NumTableau; i++ {
		if e.board.Height(Tableau(i)) == 0 {
			if emptyColumn {
				continue
			}
			emptyColumn = true
		}
		targets = append(targets, Tableau(i))
	}

	for i := 0; i < NumFreeCells; i++ {
		if e.board.Height(FreeCell(i)) == 0 {
			targets = append(targets, FreeCell(i))
			break
		}
	}
	return targets
}

// Column returns a copy of tableau column i
func (e *GameEngine) Column(i int) []Card {
	return e.board.Column(i)
}

// FreeCell returns the card in free cell i, if any
func (e *GameEngine) FreeCell(i int) (Card, bool) {
	return e.board.FreeCell(i)
}

// Foundation returns a copy of foundation pile i
func (e *GameEngine) Foundation(i int) []Card {
	return e.board.Foundation(i)
}

// MoveCount returns the number of committed moves in the current game
func (e *GameEngine) MoveCount() int {
	return e.moveCount
}

// StartedAt returns the instant the current game was dealt
func (e *GameEngine) StartedAt() time.Time {
	return e.startedAt
}

// Elapsed returns the time since the current game was dealt
func (e *GameEngine) Elapsed() time.Duration {
	return e.now().Sub(e.startedAt)
}

// IsWon returns whether every card is on a foundation
func (e *GameEngine) IsWon() bool {
	return e.won
}

// GameID returns the identifier of the current deal
func (e *GameEngine) GameID() string {
	return e.gameID
}

// Seed returns the seed the current game was dealt from
func (e *GameEngine) Seed() int64 {
	return e.seed
}

// MaxMovableCards returns the current sequence capacity
func (e *GameEngine) MaxMovableCards() int {
	return e.board.MaxMovableCards()
}

// Board returns a deep copy of the board
func (e *GameEngine) Board() *Board {
	return e.board.Clone()
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetMoveHistory returns a copy of the cumulative move log
func (e *GameEngine) GetMoveHistory() []MoveRecord {
	return append([]MoveRecord(nil), e.moveLog...)
}

// GetState returns a read-only copy of the game
func (e *GameEngine) GetState() *GameState {
	state := &GameState{
		GameID:          e.gameID,
		ConfigName:      e.config.Name,
		Seed:            e.seed,
		MoveCount:       e.moveCount,
		StartedAt:       e.startedAt,
		ElapsedSeconds:  int(e.Elapsed() / time.Second),
		Won:             e.won,
		Selection:       e.ActiveSelection(),
		UndoDepth:       e.history.Len(),
		FoundationCards: e.board.FoundationCount(),
		MaxMovable:      e.board.MaxMovableCards(),
		Message:         e.message,
		TotalMoves:      e.totalMoves,
	}

	for i := 0; i < NumTableau; i++ {
		state.Tableau[i] = e.board.Column(i)
	}
	for i := 0; i < NumFreeCells; i++ {
		if card, ok := e.board.FreeCell(i); ok {
			state.FreeCells[i] = &card
		}
	}
	for i := 0; i < NumFoundations; i++ {
		state.Foundations[i] = e.board.Foundation(i)
	}

	return state
}

func (e *GameEngine) record(entry MoveRecord) {
	entry.MoveCount = e.moveCount
	entry.Timestamp = e.now().Unix()
	entry.MoveNumber = e.totalMoves + 1

	e.moveLog = append(e.moveLog, entry)
	if len(e.moveLog) > MaxMoveLog {
		e.moveLog = append(e.moveLog[:0:0], e.moveLog[len(e.moveLog)-MaxMoveLog:]...)
	}
	e.totalMoves++
}
