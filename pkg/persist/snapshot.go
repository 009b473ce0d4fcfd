// Package persist stores session snapshots as a single JSON side file.
// Writes go through a temp-file-then-rename so a crash mid-write never
// corrupts the last good snapshot, and all saves are serialized through a
// single writer queue. Loads honor a time-to-live: an expired file is
// deleted and the engine starts empty rather than restoring stale state.
package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/papercomputeco/weft/pkg/thought"
)

// Snapshot is the persisted form of a whole session.
type Snapshot struct {
	History           []*thought.Thought `json:"history"`
	Branches          []BranchEntry      `json:"branches"`
	LastThoughtNumber int                `json:"lastThoughtNumber"`
	SavedAt           time.Time          `json:"savedAt"`
	Goal              string             `json:"goal"`
	CurrentSessionID  string             `json:"currentSessionId"`
	DeadEnds          []thought.DeadEnd  `json:"deadEnds"`
}

// BranchEntry is one named branch serialized as a [id, thoughts] pair to
// preserve branch ordering in the snapshot file.
type BranchEntry struct {
	ID       string
	Thoughts []*thought.Thought
}

// MarshalJSON encodes the entry as a two-element [id, thoughts] array.
func (e BranchEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.ID, e.Thoughts})
}

// UnmarshalJSON decodes a two-element [id, thoughts] array.
func (e *BranchEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing branch entry: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("branch entry must have 2 elements, got %d", len(raw))
	}

	if err := json.Unmarshal(raw[0], &e.ID); err != nil {
		return fmt.Errorf("parsing branch id: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Thoughts); err != nil {
		return fmt.Errorf("parsing branch thoughts: %w", err)
	}

	return nil
}
