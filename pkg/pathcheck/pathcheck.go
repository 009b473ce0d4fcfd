// Package pathcheck verifies that a candidate solution path is connected
// under the three legal "follows" relations: plain sequence, branch
// attachment, and revision continuation.
package pathcheck

import (
	"github.com/papercomputeco/weft/pkg/thought"
)

// Result reports path connectivity. DisconnectedAt is the thought number
// at which the first break occurred; zero when the path is valid.
type Result struct {
	Valid          bool `json:"valid"`
	DisconnectedAt int  `json:"disconnected_at,omitempty"`
}

// Validate walks the path and checks that each member's predecessor in the
// path belongs to its valid-predecessor set:
//
//   - the member's number minus one (plain sequence)
//   - the member's branch origin, if it is a branch continuation
//   - the member's revision target and target minus one, if it is a revision
//   - any revision whose target immediately precedes the member
//
// The first violation short-circuits.
func Validate(path []int, session []*thought.Thought) Result {
	index := indexByNumber(session)

	for i := 1; i < len(path); i++ {
		if !validPredecessor(path[i-1], path[i], index) {
			return Result{Valid: false, DisconnectedAt: path[i]}
		}
	}

	return Result{Valid: true}
}

func validPredecessor(prev, cur int, index map[int]*thought.Thought) bool {
	if prev == cur-1 {
		return true
	}

	if t := index[cur]; t != nil {
		if t.BranchFromThought != nil && prev == *t.BranchFromThought {
			return true
		}
		if t.IsRevision && t.RevisesThought != nil {
			target := *t.RevisesThought
			if prev == target || prev == target-1 {
				return true
			}
		}
	}

	// A revision of thought k is a valid predecessor of thought k+1.
	if p := index[prev]; p != nil && p.IsRevision && p.RevisesThought != nil {
		if *p.RevisesThought+1 == cur {
			return true
		}
	}

	return false
}

// indexByNumber maps thought numbers to the latest thought carrying that
// number. Revisions share their own numbers, so later entries win.
func indexByNumber(session []*thought.Thought) map[int]*thought.Thought {
	index := make(map[int]*thought.Thought, len(session))
	for _, t := range session {
		index[t.Number] = t
	}
	return index
}
