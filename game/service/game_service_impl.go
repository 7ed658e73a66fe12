package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/freecell/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.Mutex // serializes engine access and last-accessed updates
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID, // Return the config_id, not the display name
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name), // Return config_id consistently
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Engine.GetState(),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// session looks up a session and marks it accessed; callers hold s.mu
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// NewGame deals a new game in the session; seed 0 deals a random one
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string, seed int64) (*engine.GameState, error) {
	if seed < 0 {
		return nil, fmt.Errorf("%w: seed must be non-negative", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.NewGameWithSeed(seed), nil
}

// Select picks up the run at loc/row and keeps it as the session's active selection
func (s *gameServiceImpl) Select(ctx context.Context, sessionID string, loc engine.Location, row int) (*SelectResult, error) {
	if err := validateLocation(loc); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sel, ok := sess.Engine.SelectRun(loc, row)
	result := &SelectResult{
		Selected:  ok,
		Selection: sel,
		GameState: sess.Engine.GetState(),
	}
	if !ok {
		result.Message = fmt.Sprintf("Nothing to pick up at %s row %d", loc, row)
	}
	return result, nil
}

// Drop attempts to move the active selection to target
func (s *gameServiceImpl) Drop(ctx context.Context, sessionID string, target engine.Location) (*MoveResult, error) {
	if err := validateLocation(target); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sel := sess.Engine.ActiveSelection()
	outcome := sess.Engine.AttemptMove(sel, target)

	from := "nothing"
	if sel != nil {
		from = sel.Source.String()
	}
	return s.moveResult(sess, outcome, from, target), nil
}

// CancelSelection clears the session's active selection
func (s *gameServiceImpl) CancelSelection(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.CancelSelection()
	return sess.Engine.GetState(), nil
}

// Move selects the run named by req and drops it in one step
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, req MoveRequest) (*MoveResult, error) {
	if err := validateMove(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	return s.applyMove(sess, req), nil
}

// applyMove runs one select+drop against the engine; callers hold s.mu
func (s *gameServiceImpl) applyMove(sess *Session, req MoveRequest) *MoveResult {
	sel, ok := sess.Engine.SelectRun(req.From, req.Row)
	if !ok {
		state := sess.Engine.GetState()
		msg := fmt.Sprintf("Nothing to pick up at %s row %d", req.From, req.Row)
		return &MoveResult{
			Success:   false,
			Reason:    ReasonNothingToSelect,
			GameState: state,
			Message:   msg,
			Events: []GameEvent{{
				Type:      EventRejected,
				Message:   msg,
				Timestamp: time.Now(),
			}},
		}
	}

	outcome := sess.Engine.AttemptMove(sel, req.To)
	return s.moveResult(sess, outcome, req.From.String(), req.To)
}

func (s *gameServiceImpl) moveResult(sess *Session, outcome engine.MoveOutcome, from string, to engine.Location) *MoveResult {
	state := sess.Engine.GetState()
	result := &MoveResult{
		Success:   outcome.Accepted,
		Reason:    outcome.Reason,
		Moved:     outcome.Moved,
		Won:       outcome.Won,
		GameState: state,
		Message:   state.Message,
	}

	now := time.Now()
	if outcome.Accepted {
		result.Events = append(result.Events, GameEvent{
			Type:      EventMove,
			Message:   fmt.Sprintf("Moved %s from %s to %s", formatCards(outcome.Moved), from, to),
			Timestamp: now,
			Cards:     outcome.Moved,
		})
	} else {
		result.Events = append(result.Events, GameEvent{
			Type:      EventRejected,
			Message:   fmt.Sprintf("Move from %s to %s rejected: %s", from, to, outcome.Reason),
			Timestamp: now,
		})
	}
	if outcome.Won {
		result.Events = append(result.Events, GameEvent{
			Type:      EventWon,
			Message:   state.Message,
			Timestamp: now,
		})
	}

	return result
}

// BulkMove executes multiple moves in sequence, stopping at the first rejection
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []MoveRequest) (*BulkMoveResult, error) {
	for i, move := range moves {
		if err := validateMove(move); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if ctx.Err() != nil {
			result.Success = false
			result.StoppedReason = "request cancelled"
			result.StopReasonCode = "cancelled"
			result.StoppedOnMove = i + 1
			break
		}

		moveResult := s.applyMove(sess, move)
		result.Events = append(result.Events, moveResult.Events...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:     i + 1,
			From:    move.From,
			Row:     move.Row,
			To:      move.To,
			Cards:   moveResult.Moved,
			Success: moveResult.Success,
			Reason:  moveResult.Reason,
			Won:     moveResult.Won,
		})

		if !moveResult.Success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d rejected: %s to %s", i+1, move.From, move.To)
			result.StopReasonCode = moveResult.Reason
			result.StoppedOnMove = i + 1
			break
		}

		result.MovesExecuted++
		if moveResult.Won {
			result.Won = true
		}
	}

	result.GameState = sess.Engine.GetState()
	result.Message = result.GameState.Message
	result.PossibleMoves = sess.Engine.PossibleMoves()

	return result, nil
}

// Undo reverts the most recent committed move
func (s *gameServiceImpl) Undo(ctx context.Context, sessionID string) (*UndoResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	undone := sess.Engine.Undo()
	state := sess.Engine.GetState()
	result := &UndoResult{
		Undone:    undone,
		GameState: state,
		Message:   state.Message,
	}
	if undone {
		result.Message = fmt.Sprintf("Undone; %d more undo(s) available", state.UndoDepth)
	}
	return result, nil
}

// Hint suggests a foundation move
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	hint, ok := sess.Engine.Hint()
	if !ok {
		return &HintResult{Found: false, Message: sess.Engine.GetConfig().NoHintMessage()}, nil
	}

	return &HintResult{
		Found:   true,
		Hint:    &hint,
		Message: fmt.Sprintf("Move %s from %s to foundation %d", hint.Card, hint.From, hint.Foundation),
	}, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// GetPossibleMoves lists the legal single-step moves in the session's game
func (s *gameServiceImpl) GetPossibleMoves(ctx context.Context, sessionID string) ([]engine.MoveCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	moves := sess.Engine.PossibleMoves()
	if moves == nil {
		moves = []engine.MoveCandidate{}
	}
	return moves, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveRecord
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveRecord{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func validateLocation(loc engine.Location) error {
	if err := loc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	return nil
}

func validateMove(req MoveRequest) error {
	if err := validateLocation(req.From); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if err := validateLocation(req.To); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if req.Row < 0 {
		return fmt.Errorf("%w: row must be non-negative", ErrInvalidRequest)
	}
	return nil
}

// IsClientError reports whether err was caused by a malformed request
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidLocation) || errors.Is(err, ErrInvalidRequest)
}

func formatCards(cards []engine.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
