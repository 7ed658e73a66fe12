package engine

import (
	"fmt"
	"time"
)

const (
	NumTableau     = 8
	NumFreeCells   = 4
	NumFoundations = 4
	DeckSize       = 52

	// Validation constants
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
	MaxBulkMoves        = 50
	MaxMoveLog          = 500 // log entries kept per engine, oldest dropped first
	WebSocketBufferSize = 256
)

// Zone identifies one of the three board areas
type Zone string

const (
	ZoneTableau    Zone = "tableau"
	ZoneFreeCell   Zone = "freecell"
	ZoneFoundation Zone = "foundation"
)

// Location addresses a pile or slot, not a specific card
type Location struct {
	Zone  Zone `json:"zone"`
	Index int  `json:"index"`
}

// Tableau returns the location of tableau column i
func Tableau(i int) Location { return Location{Zone: ZoneTableau, Index: i} }

// FreeCell returns the location of free cell i
func FreeCell(i int) Location { return Location{Zone: ZoneFreeCell, Index: i} }

// Foundation returns the location of foundation pile i
func Foundation(i int) Location { return Location{Zone: ZoneFoundation, Index: i} }

// Validate reports whether the location names an existing pile
func (l Location) Validate() error {
	var limit int
	switch l.Zone {
	case ZoneTableau:
		limit = NumTableau
	case ZoneFreeCell:
		limit = NumFreeCells
	case ZoneFoundation:
		limit = NumFoundations
	default:
		return fmt.Errorf("unknown zone %q", l.Zone)
	}
	if l.Index < 0 || l.Index >= limit {
		return fmt.Errorf("%s index %d out of range [0,%d)", l.Zone, l.Index, limit)
	}
	return nil
}

// String renders the location as zone[index]
func (l Location) String() string {
	return fmt.Sprintf("%s[%d]", l.Zone, l.Index)
}

// mustValidate panics on an out-of-range location; callers only pass on-board addresses
func (l Location) mustValidate() {
	if err := l.Validate(); err != nil {
		panic("engine: " + err.Error())
	}
}

// Selection is a picked-up run waiting to be dropped
type Selection struct {
	Card   Card     `json:"card"`
	Source Location `json:"source"`
	Row    int      `json:"row"`
	Run    []Card   `json:"run"`
}

// Hint suggests a card that can go to a foundation right now
type Hint struct {
	Card       Card     `json:"card"`
	From       Location `json:"from"`
	Foundation int      `json:"foundation_index"`
}

// Reasons a move attempt is rejected
const (
	ReasonEmptyRun         = "empty_run"
	ReasonMultiCardTarget  = "multi_card_to_non_tableau"
	ReasonExceedsCapacity  = "exceeds_capacity"
	ReasonIllegalPlacement = "illegal_placement"
	ReasonStaleSelection   = "stale_selection"
	ReasonSameLocation     = "same_location"
	ReasonNoSelection      = "no_selection"
	ReasonGameAlreadyWon   = "game_won"
)

// MoveOutcome reports the result of AttemptMove
type MoveOutcome struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	Moved    []Card `json:"moved,omitempty"`
	Won      bool   `json:"won,omitempty"` // true only on the move that completed the game
}

// MoveCandidate is a legal single-step move
type MoveCandidate struct {
	From  Location `json:"from"`
	Row   int      `json:"row"`
	To    Location `json:"to"`
	Cards []Card   `json:"cards"`
}

// MoveRecord is one entry of the cumulative move log
type MoveRecord struct {
	Action     string    `json:"action"` // "move", "undo", "new_game"
	From       *Location `json:"from,omitempty"`
	To         *Location `json:"to,omitempty"`
	Cards      []Card    `json:"cards,omitempty"`
	Success    bool      `json:"success"`
	Reason     string    `json:"reason,omitempty"`
	MoveCount  int       `json:"move_count"`
	Timestamp  int64     `json:"timestamp"`
	MoveNumber int       `json:"move_number"`
}

// GameConfig is a game preset loaded from the configs directory
type GameConfig struct {
	Name         string `json:"name" toml:"name"`
	Description  string `json:"description" toml:"description"`
	Seed         int64  `json:"seed,omitempty" toml:"seed"` // 0 deals a random game
	HistoryLimit int    `json:"history_limit,omitempty" toml:"history_limit"`
	Messages     struct {
		Welcome       string `json:"welcome" toml:"welcome"`
		Victory       string `json:"victory" toml:"victory"`
		InvalidMove   string `json:"invalid_move" toml:"invalid_move"`
		NothingToUndo string `json:"nothing_to_undo" toml:"nothing_to_undo"`
		NoHint        string `json:"no_hint" toml:"no_hint"`
	} `json:"messages" toml:"messages"`
}

// GameState is a read-only copy of a game for rendering and transport
type GameState struct {
	GameID          string                 `json:"game_id"`
	ConfigName      string                 `json:"config_name"`
	Seed            int64                  `json:"seed"`
	Tableau         [NumTableau][]Card     `json:"tableau"`
	FreeCells       [NumFreeCells]*Card    `json:"free_cells"`
	Foundations     [NumFoundations][]Card `json:"foundations"`
	MoveCount       int                    `json:"move_count"`
	StartedAt       time.Time              `json:"started_at"`
	ElapsedSeconds  int                    `json:"elapsed_seconds"`
	Won             bool                   `json:"won"`
	Selection       *Selection             `json:"selection,omitempty"`
	UndoDepth       int                    `json:"undo_depth"`
	FoundationCards int                    `json:"foundation_cards"`
	MaxMovable      int                    `json:"max_movable"`
	Message         string                 `json:"message"`
	TotalMoves      int                    `json:"total_moves"`
}
