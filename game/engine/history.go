package engine

// Snapshot is a deep copy of the board and move counter taken before a move
type Snapshot struct {
	Board     *Board
	MoveCount int
}

// History is a bounded undo stack; the oldest snapshot is dropped once full
type History struct {
	limit     int
	snapshots []Snapshot
}

// NewHistory creates an empty history holding at most limit snapshots
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, snapshots: make([]Snapshot, 0, limit)}
}

// Push records a snapshot, evicting the oldest if the stack is full
func (h *History) Push(s Snapshot) {
	if len(h.snapshots) == h.limit {
		copy(h.snapshots, h.snapshots[1:])
		h.snapshots = h.snapshots[:len(h.snapshots)-1]
	}
	h.snapshots = append(h.snapshots, s)
}

// Pop removes and returns the most recent snapshot
func (h *History) Pop() (Snapshot, bool) {
	if len(h.snapshots) == 0 {
		return Snapshot{}, false
	}
	s := h.snapshots[len(h.snapshots)-1]
	h.snapshots[len(h.snapshots)-1] = Snapshot{}
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return s, true
}

// Len returns the number of snapshots available to undo
func (h *History) Len() int {
	return len(h.snapshots)
}

// Limit returns the stack capacity
func (h *History) Limit() int {
	return h.limit
}

// Clear drops every snapshot
func (h *History) Clear() {
	clear(h.snapshots)
	h.snapshots = h.snapshots[:0]
}
