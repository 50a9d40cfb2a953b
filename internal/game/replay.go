package game

import (
	"sync"
)

// Replay is the in-memory history of a game: one snapshot per phase change plus the
// final state. A cursor supports stepping through it.
type Replay struct {
	mu     sync.RWMutex
	gameID string
	states []*Snapshot
	cursor int
}

// NewReplay creates an empty history for gameID.
func NewReplay(gameID string) *Replay {
	return &Replay{gameID: gameID}
}

// GameID returns the game the history belongs to.
func (r *Replay) GameID() string {
	return r.gameID
}

// RecordState appends a snapshot.
func (r *Replay) RecordState(snapshot *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, snapshot)
}

// Start rewinds the cursor to the first snapshot.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = 0
}

// Next returns the snapshot under the cursor and steps past it, or nil at the end.
func (r *Replay) Next() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor >= len(r.states) {
		return nil
	}
	s := r.states[r.cursor]
	r.cursor++
	return s
}

// Previous steps the cursor back and returns the snapshot there, or nil at the start.
func (r *Replay) Previous() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor == 0 {
		return nil
	}
	r.cursor--
	return r.states[r.cursor]
}

// Skip moves the cursor by count (negative goes back), clamped to the recorded
// range, and returns the snapshot it lands on.
func (r *Replay) Skip(count int) *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		r.cursor = 0
		return nil
	}
	r.cursor = max(0, min(r.cursor+count, len(r.states)-1))
	return r.states[r.cursor]
}

// Size returns the number of recorded snapshots.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

// GetStateAt returns the snapshot at index, or nil when out of range.
func (r *Replay) GetStateAt(index int) *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.states) {
		return nil
	}
	return r.states[index]
}

// Last returns the most recent snapshot, or nil before the game starts.
func (r *Replay) Last() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.states) == 0 {
		return nil
	}
	return r.states[len(r.states)-1]
}

// Turn returns the snapshots recorded during turn n, in order.
func (r *Replay) Turn(n int) []*Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Snapshot
	for _, s := range r.states {
		if s.Turn.TurnNumber == n {
			out = append(out, s)
		}
	}
	return out
}
