// Package session holds the authoritative in-memory state of a reasoning
// session and the engine that orchestrates admission, batch replacement,
// consolidation, and persistence around it.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/weft/pkg/persist"
	"github.com/papercomputeco/weft/pkg/thought"
)

// DeadEndCap is the default bound on the dead-end list; oldest entries
// are evicted first. Configurable via session.dead_end_cap.
const DeadEndCap = 20

// Store is the authoritative in-memory session state. It is not safe for
// concurrent use; the engine serializes access.
type Store struct {
	// history is the raw admission-ordered thought list. The stagnation
	// detector reads this directly, while validators work on the
	// session-filtered view.
	history []*thought.Thought

	branches    map[string][]*thought.Thought
	branchOrder []string

	deadEnds []thought.DeadEnd

	goal             string
	currentSessionID string
	lastNumber       int
	deadEndCap       int
}

// NewStore creates an empty store with a fresh session id.
func NewStore() *Store {
	return &Store{
		branches:         make(map[string][]*thought.Thought),
		currentSessionID: newSessionID(),
		deadEndCap:       DeadEndCap,
	}
}

// SetDeadEndCap overrides the dead-end list bound. Values below one are
// ignored.
func (s *Store) SetDeadEndCap(n int) {
	if n > 0 {
		s.deadEndCap = n
	}
}

// newSessionID derives a session id from the creation timestamp, with a
// uuid suffix so two sessions created in the same millisecond stay
// distinct.
func newSessionID() string {
	return fmt.Sprintf("session-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// SessionID returns the current session id.
func (s *Store) SessionID() string {
	return s.currentSessionID
}

// Goal returns the session goal.
func (s *Store) Goal() string {
	return s.goal
}

// SetGoal records the session goal.
func (s *Store) SetGoal(goal string) {
	s.goal = goal
}

// LastNumber returns the last assigned thought number.
func (s *Store) LastNumber() int {
	return s.lastNumber
}

// History returns the raw thought history in admission order.
func (s *Store) History() []*thought.Thought {
	return s.history
}

// SessionThoughts returns the history filtered to the current session.
func (s *Store) SessionThoughts() []*thought.Thought {
	var out []*thought.Thought
	for _, t := range s.history {
		if t.SessionID == s.currentSessionID {
			out = append(out, t)
		}
	}
	return out
}

// ThoughtCount returns the number of thoughts in the current session.
func (s *Store) ThoughtCount() int {
	return len(s.SessionThoughts())
}

// BranchCount returns the number of named branches.
func (s *Store) BranchCount() int {
	return len(s.branches)
}

// DeadEnds returns the recorded dead ends, oldest first.
func (s *Store) DeadEnds() []thought.DeadEnd {
	return s.deadEnds
}

// Append admits a thought into the session: raw history, branch index,
// and the last-assigned number. The number advances only on non-revision
// thoughts.
func (s *Store) Append(t *thought.Thought) {
	s.history = append(s.history, t)

	if t.BranchID != "" {
		if _, ok := s.branches[t.BranchID]; !ok {
			s.branchOrder = append(s.branchOrder, t.BranchID)
		}
		s.branches[t.BranchID] = append(s.branches[t.BranchID], t)
	}

	if !t.IsRevision && t.Number > s.lastNumber {
		s.lastNumber = t.Number
	}
}

// RecordDeadEnd appends a dead end, deduplicated by path within the
// session and capped with FIFO eviction. Returns false when the path was
// already recorded.
func (s *Store) RecordDeadEnd(path []int, reason string, now time.Time) bool {
	for _, de := range s.deadEnds {
		if de.SessionID == s.currentSessionID && samePath(de.Path, path) {
			return false
		}
	}

	if len(s.deadEnds) >= s.deadEndCap {
		s.deadEnds = s.deadEnds[len(s.deadEnds)-s.deadEndCap+1:]
	}

	s.deadEnds = append(s.deadEnds, thought.DeadEnd{
		Path:      append([]int(nil), path...),
		Reason:    reason,
		CreatedAt: now,
		SessionID: s.currentSessionID,
	})

	return true
}

func samePath(a, b []int) bool {
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

// Reset wipes all state and starts a new session. Returns the number of
// thoughts and branches cleared.
func (s *Store) Reset() (clearedThoughts, clearedBranches int) {
	clearedThoughts = len(s.history)
	clearedBranches = len(s.branches)

	s.history = nil
	s.branches = make(map[string][]*thought.Thought)
	s.branchOrder = nil
	s.deadEnds = nil
	s.goal = ""
	s.lastNumber = 0
	s.currentSessionID = newSessionID()

	return clearedThoughts, clearedBranches
}

// ReplaceAll swaps the whole session state for an accepted batch as one
// unit: fresh session id, new goal, and the given thoughts in order.
func (s *Store) ReplaceAll(goal string, thoughts []*thought.Thought) {
	s.Reset()
	s.goal = goal

	for _, t := range thoughts {
		t.SessionID = s.currentSessionID
		s.Append(t)
	}
}

// Snapshot captures the full store state for persistence.
func (s *Store) Snapshot(now time.Time) *persist.Snapshot {
	snap := &persist.Snapshot{
		History:           append([]*thought.Thought(nil), s.history...),
		LastThoughtNumber: s.lastNumber,
		SavedAt:           now,
		Goal:              s.goal,
		CurrentSessionID:  s.currentSessionID,
		DeadEnds:          append([]thought.DeadEnd(nil), s.deadEnds...),
	}

	for _, id := range s.branchOrder {
		snap.Branches = append(snap.Branches, persist.BranchEntry{
			ID:       id,
			Thoughts: append([]*thought.Thought(nil), s.branches[id]...),
		})
	}

	return snap
}

// Restore replaces the store state from a persisted snapshot.
func (s *Store) Restore(snap *persist.Snapshot) {
	s.history = append([]*thought.Thought(nil), snap.History...)
	s.branches = make(map[string][]*thought.Thought, len(snap.Branches))
	s.branchOrder = nil
	for _, entry := range snap.Branches {
		s.branches[entry.ID] = entry.Thoughts
		s.branchOrder = append(s.branchOrder, entry.ID)
	}
	s.deadEnds = append([]thought.DeadEnd(nil), snap.DeadEnds...)
	s.goal = snap.Goal
	s.lastNumber = snap.LastThoughtNumber
	if snap.CurrentSessionID != "" {
		s.currentSessionID = snap.CurrentSessionID
	}
}
