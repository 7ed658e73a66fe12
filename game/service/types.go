package service

import (
	"errors"
	"time"

	"github.com/wricardo/freecell/game/engine"
)

var (
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidRequest  = errors.New("invalid request")
)

// ReasonNothingToSelect is reported when a move names a source with no accessible card
const ReasonNothingToSelect = "nothing_to_select"

// Event types
const (
	EventMove     = "move"
	EventRejected = "rejected"
	EventWon      = "won"
	EventUndo     = "undo"
	EventNewGame  = "new_game"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveRequest names a run by its source and starting row, and where to drop it
type MoveRequest struct {
	From engine.Location `json:"from"`
	Row  int             `json:"row"`
	To   engine.Location `json:"to"`
}

// SelectResult contains the result of picking up a run
type SelectResult struct {
	Selected  bool              `json:"selected"`
	Selection *engine.Selection `json:"selection,omitempty"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	Reason    string            `json:"reason,omitempty"`
	Moved     []engine.Card     `json:"moved,omitempty"`
	Won       bool              `json:"won,omitempty"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // Rejection reason of the stopping move
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	Won           bool                   `json:"won"`
	Message       string                 `json:"message,omitempty"`
	PossibleMoves []engine.MoveCandidate `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each attempted move in the bulk call
type StepInfo struct {
	Idx     int             `json:"idx"`
	From    engine.Location `json:"from"`
	Row     int             `json:"row"`
	To      engine.Location `json:"to"`
	Cards   []engine.Card   `json:"cards,omitempty"`
	Success bool            `json:"success"`
	Reason  string          `json:"reason,omitempty"`
	Won     bool            `json:"won,omitempty"`
}

// UndoResult contains the result of an undo request
type UndoResult struct {
	Undone    bool              `json:"undone"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
}

// HintResult contains the suggested foundation move, if any
type HintResult struct {
	Found   bool         `json:"found"`
	Hint    *engine.Hint `json:"hint,omitempty"`
	Message string       `json:"message"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string        `json:"type"` // "move", "rejected", "won", "undo", "new_game"
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Cards     []engine.Card `json:"cards,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveRecord `json:"moves"`
	TotalMoves  int                 `json:"total_moves"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	Seed         int64  `json:"seed,omitempty"`
	HistoryLimit int    `json:"history_limit"`
}
