package engine

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func createTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	engine, err := NewEngine(createValidConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

// setBoard replaces the dealt board with a hand-built position
func setBoard(e *GameEngine, b *Board) {
	e.board = b
	e.history.Clear()
	e.selection = nil
	e.moveCount = 0
	e.won = b.IsWon()
	e.announced = false
}

func sameBoard(a, b *Board) bool {
	for i := 0; i < NumTableau; i++ {
		if !slices.Equal(a.Column(i), b.Column(i)) {
			return false
		}
	}
	for i := 0; i < NumFreeCells; i++ {
		ca, oka := a.FreeCell(i)
		cb, okb := b.FreeCell(i)
		if oka != okb || ca != cb {
			return false
		}
	}
	for i := 0; i < NumFoundations; i++ {
		if !slices.Equal(a.Foundation(i), b.Foundation(i)) {
			return false
		}
	}
	return true
}

// nearlyWonBoard has every card on the foundations except K♠, which sits alone in column 0
func nearlyWonBoard() *Board {
	b := &Board{}
	for i, suit := range Suits {
		for rank := Ace; rank <= King; rank++ {
			b.foundations[i] = append(b.foundations[i], card(rank, suit))
		}
	}
	b.foundations[3] = b.foundations[3][:12]
	b.tableau[0] = []Card{card(King, Spades)}
	return b
}

func TestNewEngine(t *testing.T) {
	engine := createTestEngine(t)
	state := engine.GetState()

	seen := make(map[Card]bool)
	for col, cards := range state.Tableau {
		want := 6
		if col < 4 {
			want = 7
		}
		if len(cards) != want {
			t.Errorf("Expected column %d to have %d cards, got %d", col, want, len(cards))
		}
		for _, c := range cards {
			seen[c] = true
		}
	}
	if len(seen) != DeckSize {
		t.Errorf("Expected %d distinct cards, got %d", DeckSize, len(seen))
	}
	for i, cell := range state.FreeCells {
		if cell != nil {
			t.Errorf("Expected free cell %d empty, got %s", i, cell)
		}
	}
	if state.FoundationCards != 0 {
		t.Errorf("Expected empty foundations, got %d cards", state.FoundationCards)
	}

	if state.Seed != 42 {
		t.Errorf("Expected preset seed 42, got %d", state.Seed)
	}
	if state.GameID == "" {
		t.Error("Expected a game ID")
	}
	if state.Message != "Welcome to the test game!" {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if state.MoveCount != 0 || state.Won || state.UndoDepth != 0 {
		t.Errorf("Expected fresh counters, got %+v", state)
	}
	if log := engine.GetMoveHistory(); len(log) != 1 || log[0].Action != ActionNewGame || state.TotalMoves != 1 {
		t.Errorf("Expected a single new_game log entry, got %+v", log)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createValidConfig()
	config.Name = ""

	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults()
	if engine.GetConfig().Name != "Classic" {
		t.Errorf("Expected Classic preset, got %s", engine.GetConfig().Name)
	}
	if engine.Seed() == 0 {
		t.Error("Expected a random non-zero seed")
	}
}

func TestEngine_SeededDeals(t *testing.T) {
	a := createTestEngine(t)
	b := createTestEngine(t)

	if !sameBoard(a.Board(), b.Board()) {
		t.Error("Expected the same seed to deal the same game")
	}
	if a.GameID() == b.GameID() {
		t.Error("Expected every deal to get its own game ID")
	}

	first := a.Board()
	a.NewGameWithSeed(1234)
	if sameBoard(first, a.Board()) {
		t.Error("Expected a different seed to deal a different game")
	}
	a.NewGameWithSeed(42)
	if !sameBoard(first, a.Board()) {
		t.Error("Expected re-dealing seed 42 to reproduce the first game")
	}
}

func TestEngine_NewGameResets(t *testing.T) {
	engine := createTestEngine(t)
	setBoard(engine, nearlyWonBoard())

	sel, _ := engine.SelectRun(Tableau(0), 0)
	if !engine.AttemptMove(sel, Foundation(3)).Won {
		t.Fatal("Expected winning move")
	}

	oldID := engine.GameID()
	state := engine.NewGame()

	if state.Won || engine.IsWon() {
		t.Error("Expected new game to clear the won state")
	}
	if state.MoveCount != 0 || state.UndoDepth != 0 {
		t.Errorf("Expected counters reset, got moves=%d undo=%d", state.MoveCount, state.UndoDepth)
	}
	if state.GameID == oldID {
		t.Error("Expected a new game ID")
	}
	if engine.Undo() {
		t.Error("Expected no undo history after a new game")
	}
	// The move log is cumulative across games
	if state.TotalMoves != 3 {
		t.Errorf("Expected 3 log entries (new_game, move, new_game), got %d", state.TotalMoves)
	}
}

func TestEngine_SelectRun(t *testing.T) {
	engine := createTestEngine(t)
	setBoard(engine, capacityBoard())

	t.Run("tableau run", func(t *testing.T) {
		sel, ok := engine.SelectRun(Tableau(0), 2)
		if !ok {
			t.Fatal("Expected selection to succeed")
		}
		if sel.Card != card(10, Hearts) || len(sel.Run) != 5 || sel.Row != 2 {
			t.Errorf("Unexpected selection %+v", sel)
		}
		if active := engine.ActiveSelection(); active == nil || active.Card != sel.Card {
			t.Error("Expected selection to become active")
		}
	})

	t.Run("free cell", func(t *testing.T) {
		sel, ok := engine.SelectRun(FreeCell(1), 0)
		if !ok || sel.Card != card(2, Diamonds) || len(sel.Run) != 1 {
			t.Errorf("Expected 2♦ from free cell 1, got %+v (%v)", sel, ok)
		}
	})

	t.Run("nothing accessible", func(t *testing.T) {
		if _, ok := engine.SelectRun(FreeCell(3), 0); ok {
			t.Error("Expected empty free cell selection to fail")
		}
		if _, ok := engine.SelectRun(Tableau(3), 0); ok {
			t.Error("Expected empty column selection to fail")
		}
		if _, ok := engine.SelectRun(Tableau(0), 9); ok {
			t.Error("Expected out-of-range row selection to fail")
		}
	})

	t.Run("returned selection is a copy", func(t *testing.T) {
		sel, _ := engine.SelectRun(Tableau(0), 5)
		sel.Run[0] = card(Ace, Spades)
		if engine.ActiveSelection().Run[0] != card(7, Spades) {
			t.Error("Expected caller edits not to reach the engine")
		}
	})
}

func TestEngine_AttemptMove_Accepted(t *testing.T) {
	engine := createTestEngine(t)
	setBoard(engine, capacityBoard())

	sel, ok := engine.SelectRun(Tableau(0), 6)
	if !ok {
		t.Fatal("Expected selection of 6♥")
	}

	outcome := engine.AttemptMove(sel, FreeCell(2))
	if !outcome.Accepted {
		t.Fatalf("Expected move to be accepted, got %s", outcome.Reason)
	}
	if outcome.Won {
		t.Error("Expected no win")
	}
	if len(outcome.Moved) != 1 || outcome.Moved[0] != card(6, Hearts) {
		t.Errorf("Expected 6♥ moved, got %v", outcome.Moved)
	}

	if c, ok := engine.FreeCell(2); !ok || c != card(6, Hearts) {
		t.Errorf("Expected 6♥ in free cell 2, got %v", c)
	}
	if len(engine.Column(0)) != 6 {
		t.Errorf("Expected column 0 to shrink to 6, got %d", len(engine.Column(0)))
	}
	if engine.MoveCount() != 1 {
		t.Errorf("Expected move count 1, got %d", engine.MoveCount())
	}
	if engine.ActiveSelection() != nil {
		t.Error("Expected selection cleared after move")
	}
	if engine.GetState().UndoDepth != 1 {
		t.Errorf("Expected one snapshot, got %d", engine.GetState().UndoDepth)
	}
}

func TestEngine_AttemptMove_Sequence(t *testing.T) {
	engine := createTestEngine(t)
	setBoard(engine, capacityBoard())

	sel, _ := engine.SelectRun(Tableau(0), 1)
	outcome := engine.AttemptMove(sel, Tableau(2))
	if !outcome.Accepted {
		t.Fatalf("Expected 6-card run to move, got %s", outcome.Reason)
	}

	want := []Card{
		card(Queen, Diamonds), card(Jack, Spades), card(10, Hearts), card(9, Spades),
		card(8, Hearts), card(7, Spades), card(6, Hearts),
	}
	if got := engine.Column(2); !slices.Equal(got, want) {
		t.Errorf("Expected run appended in order, got %v", got)
	}
	if got := engine.Column(0); len(got) != 1 || got[0] != card(Queen, Hearts) {
		t.Errorf("Expected Q♥ left behind, got %v", got)
	}
	if engine.MoveCount() != 1 {
		t.Errorf("Expected a sequence move to count once, got %d", engine.MoveCount())
	}
	if engine.GetState().UndoDepth != 1 {
		t.Errorf("Expected a single snapshot per move, got %d", engine.GetState().UndoDepth)
	}
}

func TestEngine_AttemptMove_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		row    int
		source Location
		target Location
		reason string
	}{
		{"exceeds capacity", 0, Tableau(0), Tableau(1), ReasonExceedsCapacity},
		{"illegal placement", 1, Tableau(0), Tableau(1), ReasonIllegalPlacement},
		{"run to free cell", 4, Tableau(0), FreeCell(3), ReasonMultiCardTarget},
		{"same location", 6, Tableau(0), Tableau(0), ReasonSameLocation},
		{"free cell to taken free cell", 0, FreeCell(0), FreeCell(1), ReasonIllegalPlacement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := createTestEngine(t)
			setBoard(engine, capacityBoard())
			before := engine.Board()

			sel, ok := engine.SelectRun(tt.source, tt.row)
			if !ok {
				t.Fatal("Expected selection to succeed")
			}
			outcome := engine.AttemptMove(sel, tt.target)

			if outcome.Accepted {
				t.Fatal("Expected move to be rejected")
			}
			if outcome.Reason != tt.reason {
				t.Errorf("Expected reason %s, got %s", tt.reason, outcome.Reason)
			}
			if !sameBoard(before, engine.Board()) {
				t.Error("Expected board unchanged after rejection")
			}
			if engine.MoveCount() != 0 {
				t.Errorf("Expected move count 0, got %d", engine.MoveCount())
			}
			if engine.ActiveSelection() != nil {
				t.Error("Expected selection cleared after rejection")
			}
			if !strings.HasPrefix(engine.GetState().Message, "Illegal move") {
				t.Errorf("Expected invalid move message, got %q", engine.GetState().Message)
			}
		})
	}
}

func TestEngine_AttemptMove_NoSelection(t *testing.T) {
	engine := createTestEngine(t)
	outcome := engine.AttemptMove(nil, Tableau(0))
	if outcome.Accepted || outcome.Reason != ReasonNoSelection {
		t.Errorf("Expected %s, got %+v", ReasonNoSelection, outcome)
	}
}

func TestEngine_AttemptMove_StaleSelection(t *testing.T) {
	engine := createTestEngine(t)
	setBoard(engine, capacityBoard())

	stale, _ := engine.SelectRun(Tableau(0), 5)
	sel, _ := engine.SelectRun(Tableau(0), 6)
	if !engine.AttemptMove(sel, FreeCell(2)).Accepted {
		t.Fatal("Expected 6♥ to move to a free cell")
	}

	outcome := engine.AttemptMove(stale, FreeCell(3))
	if outcome.Accepted || outcome.Reason != ReasonStaleSelection {
		t.Errorf("Expected %s, got %+v", ReasonStaleSelection, outcome)
	}
}

func TestEngine_AttemptMove_InvalidTargetPanics(t *testing.T) {
	engine := createTestEngine(t)
	sel, _ := engine.SelectRun(Tableau(0), 6)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for out-of-range target")
		}
	}()
	engine.AttemptMove(sel, Tableau(NumTableau))
}

func TestEngine_Undo(t *testing.T) {
	engine := createTestEngine(t)
	before := engine.Board()

	sel, ok := engine.SelectRun(Tableau(0), 6)
	if !ok {
		t.Fatal("Expected top card selection")
	}
	if !engine.AttemptMove(sel, FreeCell(0)).Accepted {
		t.Fatal("Expected move to a free cell")
	}

	if !engine.Undo() {
		t.Fatal("Expected undo to succeed")
	}
	if !sameBoard(before, engine.Board()) {
		t.Error("Expected undo to restore the exact pre-move board")
	}
	if engine.MoveCount() != 0 {
		t.Errorf("Expected move count restored to 0, got %d", engine.MoveCount())
	}

	if engine.Undo() {
		t.Error("Expected second undo to report nothing to undo")
	}
	if engine.GetState().Message != "Nothing to undo" {
		t.Errorf("Expected nothing-to-undo message, got %q", engine.GetState().Message)
	}
}

func TestEngine_UndoLimit(t *testing.T) {
	engine := createTestEngine(t)
	b := &Board{}
	b.tableau[0] = []Card{card(King, Hearts)}
	setBoard(engine, b)

	// Shuttle the card: column 0, then free cells 0,1,2,3,0,1,...
	path := []Location{Tableau(0)}
	for i := 0; i < 11; i++ {
		path = append(path, FreeCell(i%NumFreeCells))
	}

	var boards []*Board
	var counts []int
	for i := 0; i < 11; i++ {
		boards = append(boards, engine.Board())
		counts = append(counts, engine.MoveCount())

		sel, ok := engine.SelectRun(path[i], 0)
		if !ok {
			t.Fatalf("Move %d: expected selection at %s", i+1, path[i])
		}
		if outcome := engine.AttemptMove(sel, path[i+1]); !outcome.Accepted {
			t.Fatalf("Move %d: expected accepted, got %s", i+1, outcome.Reason)
		}
	}
	if engine.MoveCount() != 11 {
		t.Fatalf("Expected 11 moves, got %d", engine.MoveCount())
	}

	for i := 10; i >= 1; i-- {
		if !engine.Undo() {
			t.Fatalf("Expected undo to restore the state before move %d", i+1)
		}
		if !sameBoard(boards[i], engine.Board()) || engine.MoveCount() != counts[i] {
			t.Errorf("Expected state before move %d after undo", i+1)
		}
	}

	if engine.Undo() {
		t.Error("Expected the 11th undo to fail: the oldest state was evicted")
	}
	if sameBoard(boards[0], engine.Board()) {
		t.Error("Expected the original position to be unrecoverable")
	}
	if engine.MoveCount() != 1 {
		t.Errorf("Expected move count 1 after 10 undos, got %d", engine.MoveCount())
	}
}

func TestEngine_Win(t *testing.T) {
	engine := createTestEngine(t)
	setBoard(engine, nearlyWonBoard())

	if engine.IsWon() {
		t.Fatal("Expected 51 foundation cards not to be a win")
	}

	sel, _ := engine.SelectRun(Tableau(0), 0)
	outcome := engine.AttemptMove(sel, Foundation(3))
	if !outcome.Accepted || !outcome.Won {
		t.Fatalf("Expected winning move, got %+v", outcome)
	}
	if !engine.IsWon() {
		t.Error("Expected IsWon after 52 cards reach the foundations")
	}
	if engine.GetState().Message != "Won in 1 moves!" {
		t.Errorf("Expected formatted victory message, got %q", engine.GetState().Message)
	}

	sel, _ = engine.SelectRun(Foundation(3), 0)
	if outcome := engine.AttemptMove(sel, Tableau(1)); outcome.Reason != ReasonGameAlreadyWon {
		t.Errorf("Expected %s after the win, got %+v", ReasonGameAlreadyWon, outcome)
	}

	// The win is announced once per game
	if !engine.Undo() || engine.IsWon() {
		t.Fatal("Expected undo to take the game back out of the won position")
	}
	sel, _ = engine.SelectRun(Tableau(0), 0)
	outcome = engine.AttemptMove(sel, Foundation(3))
	if !outcome.Accepted || outcome.Won {
		t.Errorf("Expected the repeated win not to be announced again, got %+v", outcome)
	}
	if !engine.IsWon() {
		t.Error("Expected IsWon to reflect the completed board")
	}
}

func TestEngine_CancelSelection(t *testing.T) {
	engine := createTestEngine(t)
	before := engine.Board()

	engine.CancelSelection()
	engine.CancelSelection()
	if engine.ActiveSelection() != nil {
		t.Error("Expected no selection")
	}

	if _, ok := engine.SelectRun(Tableau(1), 6); !ok {
		t.Fatal("Expected selection to succeed")
	}
	engine.CancelSelection()
	if engine.ActiveSelection() != nil {
		t.Error("Expected selection cleared")
	}
	if !sameBoard(before, engine.Board()) || engine.MoveCount() != 0 {
		t.Error("Expected cancel to leave the board untouched")
	}
}

func TestEngine_Hint(t *testing.T) {
	engine := createTestEngine(t)

	t.Run("tableau before free cells", func(t *testing.T) {
		b := &Board{}
		b.tableau[0] = []Card{card(5, Clubs)}
		b.tableau[1] = []Card{card(Ace, Diamonds)}
		ace := card(Ace, Hearts)
		b.freeCells[0] = &ace
		setBoard(engine, b)

		hint, ok := engine.Hint()
		if !ok {
			t.Fatal("Expected a hint")
		}
		if hint.Card != card(Ace, Diamonds) || hint.From != Tableau(1) || hint.Foundation != 0 {
			t.Errorf("Expected A♦ from column 1 to foundation 0, got %+v", hint)
		}
	})

	t.Run("free cell", func(t *testing.T) {
		b := &Board{}
		b.tableau[0] = []Card{card(5, Clubs)}
		b.foundations[0] = []Card{card(Ace, Hearts)}
		two := card(2, Hearts)
		b.freeCells[2] = &two
		setBoard(engine, b)

		hint, ok := engine.Hint()
		if !ok || hint.From != FreeCell(2) || hint.Foundation != 0 {
			t.Errorf("Expected 2♥ from free cell 2 onto foundation 0, got %+v (%v)", hint, ok)
		}
	})

	t.Run("none", func(t *testing.T) {
		b := &Board{}
		b.tableau[0] = []Card{card(5, Clubs)}
		setBoard(engine, b)

		before := engine.GetState().Message
		if _, ok := engine.Hint(); ok {
			t.Error("Expected no hint")
		}
		if got := engine.GetState().Message; got != before {
			t.Errorf("Expected a hint query to leave the message %q, got %q", before, got)
		}
	})
}

func TestEngine_PossibleMoves(t *testing.T) {
	engine := createTestEngine(t)
	setBoard(engine, capacityBoard())

	moves := engine.PossibleMoves()

	has := func(from Location, row int, to Location) bool {
		for _, m := range moves {
			if m.From == from && m.Row == row && m.To == to {
				return true
			}
		}
		return false
	}

	if !has(Tableau(0), 1, Tableau(2)) {
		t.Error("Expected J♠..6♥ onto Q♦")
	}
	if has(Tableau(0), 0, Tableau(1)) {
		t.Error("Expected the 7-card run onto K♠ to be excluded")
	}
	if !has(Tableau(0), 3, Tableau(3)) || !has(Tableau(0), 1, Tableau(3)) {
		t.Error("Expected runs up to the capacity of 6 into the empty column")
	}
	if has(Tableau(0), 0, Tableau(3)) {
		t.Error("Expected the 7-card run into the empty column to be excluded")
	}
	if !has(FreeCell(0), 0, Foundation(0)) {
		t.Error("Expected A♣ to a foundation")
	}
	if !has(Tableau(0), 6, FreeCell(2)) {
		t.Error("Expected 6♥ to the first empty free cell")
	}
	if has(Tableau(0), 6, FreeCell(3)) {
		t.Error("Expected equivalent empty free cells to be collapsed")
	}

	for _, m := range moves {
		sel, ok := engine.SelectRun(m.From, m.Row)
		if !ok {
			t.Fatalf("Expected candidate source %s row %d to be selectable", m.From, m.Row)
		}
		if reason := engine.board.checkSequence(sel.Run, m.To); reason != "" {
			t.Errorf("Candidate %s->%s is not legal: %s", m.From, m.To, reason)
		}
	}
	engine.CancelSelection()
}

func TestEngine_Elapsed(t *testing.T) {
	engine := createTestEngine(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }
	engine.NewGameWithSeed(5)

	if !engine.StartedAt().Equal(now) {
		t.Errorf("Expected start at %v, got %v", now, engine.StartedAt())
	}

	now = now.Add(90 * time.Second)
	if engine.Elapsed() != 90*time.Second {
		t.Errorf("Expected 90s elapsed, got %v", engine.Elapsed())
	}
	if engine.GetState().ElapsedSeconds != 90 {
		t.Errorf("Expected elapsed_seconds 90, got %d", engine.GetState().ElapsedSeconds)
	}
}

func TestEngine_GetStateIsACopy(t *testing.T) {
	engine := createTestEngine(t)
	before := engine.Board()

	state := engine.GetState()
	state.Tableau[0][0] = card(Ace, Spades)
	state.Tableau[1] = nil
	ace := card(Ace, Hearts)
	state.FreeCells[0] = &ace

	if !sameBoard(before, engine.Board()) {
		t.Error("Expected state edits not to reach the engine")
	}
}

func TestEngine_MoveLog(t *testing.T) {
	engine := createTestEngine(t)

	sel, _ := engine.SelectRun(Tableau(0), 6)
	engine.AttemptMove(sel, FreeCell(0))
	sel, _ = engine.SelectRun(Tableau(1), 6)
	engine.AttemptMove(sel, FreeCell(0))
	engine.Undo()

	log := engine.GetMoveHistory()
	wantActions := []string{ActionNewGame, ActionMove, ActionMove, ActionUndo}
	if len(log) != len(wantActions) {
		t.Fatalf("Expected %d entries, got %d", len(wantActions), len(log))
	}
	for i, entry := range log {
		if entry.Action != wantActions[i] {
			t.Errorf("Entry %d: expected %s, got %s", i, wantActions[i], entry.Action)
		}
		if entry.MoveNumber != i+1 {
			t.Errorf("Entry %d: expected move number %d, got %d", i, i+1, entry.MoveNumber)
		}
	}

	if !log[1].Success || log[1].To == nil || *log[1].To != FreeCell(0) {
		t.Errorf("Expected successful move to free cell 0, got %+v", log[1])
	}
	if log[2].Success || log[2].Reason != ReasonIllegalPlacement {
		t.Errorf("Expected rejected move into taken free cell, got %+v", log[2])
	}
	if log[3].MoveCount != 0 {
		t.Errorf("Expected undo entry to record move count 0, got %d", log[3].MoveCount)
	}
}

func TestEngine_MoveLogLimit(t *testing.T) {
	engine := createTestEngine(t)
	for seed := int64(1); seed <= MaxMoveLog+10; seed++ {
		engine.NewGameWithSeed(seed)
	}

	total := MaxMoveLog + 11
	log := engine.GetMoveHistory()
	if len(log) != MaxMoveLog {
		t.Fatalf("Expected the log to keep %d entries, got %d", MaxMoveLog, len(log))
	}
	if first := log[0].MoveNumber; first != total-MaxMoveLog+1 {
		t.Errorf("Expected the oldest entries dropped, first kept is %d", first)
	}
	if last := log[len(log)-1].MoveNumber; last != total {
		t.Errorf("Expected the newest entry numbered %d, got %d", total, last)
	}
	if state := engine.GetState(); state.TotalMoves != total {
		t.Errorf("Expected %d entries counted, got %d", total, state.TotalMoves)
	}
}
