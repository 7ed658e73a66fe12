package service

import (
	"context"
	"time"

	"github.com/wricardo/freecell/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	NewGame(ctx context.Context, sessionID string, seed int64) (*engine.GameState, error)
	Select(ctx context.Context, sessionID string, loc engine.Location, row int) (*SelectResult, error)
	Drop(ctx context.Context, sessionID string, target engine.Location) (*MoveResult, error)
	CancelSelection(ctx context.Context, sessionID string) (*engine.GameState, error)
	Move(ctx context.Context, sessionID string, req MoveRequest) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []MoveRequest) (*BulkMoveResult, error)
	Undo(ctx context.Context, sessionID string) (*UndoResult, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetPossibleMoves(ctx context.Context, sessionID string) ([]engine.MoveCandidate, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         engine.Engine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
