// Package validate implements the structural admission rules for candidate
// thoughts: duplicate numbers, branch sources, revision quality, and
// sequence ordering.
//
// Rule order is part of the contract: duplicate, then branch, then
// sequence/revision. Duplicate and branch failures hard-reject before
// storage. A sequence break on a fresh thought is a soft warning (the
// thought is stored and the declared total raised); revision failures are
// always hard.
package validate

import (
	"fmt"

	"github.com/papercomputeco/weft/pkg/textmetric"
	"github.com/papercomputeco/weft/pkg/thought"
)

const (
	// ShallowRevisionThreshold rejects revisions nearly identical to
	// their target.
	ShallowRevisionThreshold = 0.85

	// CircularRevisionThreshold rejects revisions that circle back to an
	// earlier non-revision thought.
	CircularRevisionThreshold = 0.80
)

// RejectionError is a hard admission failure. The candidate is never
// stored and the caller must resubmit. Messages are deterministic
// functions of the offending input.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

func rejectf(format string, args ...any) *RejectionError {
	return &RejectionError{Reason: fmt.Sprintf(format, args...)}
}

// CheckDuplicate rejects non-revision candidates whose number is already
// taken in the session.
func CheckDuplicate(in *thought.Input, session []*thought.Thought) error {
	if in.IsRevision {
		return nil
	}

	for _, t := range session {
		if !t.IsRevision && t.Number == in.ThoughtNumber {
			return rejectf("duplicate thought number %d", in.ThoughtNumber)
		}
	}

	return nil
}

// CheckBranchSource rejects candidates whose declared branch origin does
// not exist in the session.
func CheckBranchSource(in *thought.Input, session []*thought.Thought) error {
	if in.BranchFromThought == nil {
		return nil
	}

	if findByNumber(session, *in.BranchFromThought) == nil {
		return rejectf("invalid branch: source thought %d does not exist", *in.BranchFromThought)
	}

	return nil
}

// CheckSequence validates ordering and revision quality. Revisions and
// branch continuations bypass strict ordering; fresh thoughts must arrive
// at lastNumber+1 or collect a soft warning. Returned warnings never block
// admission; a non-nil error always does.
func CheckSequence(in *thought.Input, session []*thought.Thought, lastNumber int, metrics *textmetric.Analyzer) ([]string, error) {
	if in.IsRevision {
		return nil, checkRevision(in, session, metrics)
	}

	if in.BranchFromThought != nil {
		return nil, nil
	}

	if expected := lastNumber + 1; in.ThoughtNumber != expected {
		return []string{fmt.Sprintf("sequence break: expected thought %d, got %d", expected, in.ThoughtNumber)}, nil
	}

	return nil, nil
}

// checkRevision applies the three hard revision rules: the target must
// exist, the text must differ from the target beyond the shallow margin,
// and must not closely match any strictly earlier non-revision thought.
func checkRevision(in *thought.Input, session []*thought.Thought, metrics *textmetric.Analyzer) error {
	if in.RevisesThought == nil {
		return rejectf("invalid revision: thought %d declares no target", in.ThoughtNumber)
	}

	targetNumber := *in.RevisesThought
	target := findByNumber(session, targetNumber)
	if target == nil {
		return rejectf("invalid revision: thought %d does not exist", targetNumber)
	}

	if metrics.Jaccard(in.Thought, target.Text) > ShallowRevisionThreshold {
		return rejectf("shallow revision: thought %d is too similar to its target %d", in.ThoughtNumber, targetNumber)
	}

	for _, earlier := range session {
		if earlier.IsRevision || earlier.Number >= targetNumber {
			continue
		}
		if metrics.Jaccard(in.Thought, earlier.Text) > CircularRevisionThreshold {
			return rejectf("circular revision: thought %d closely matches earlier thought %d", in.ThoughtNumber, earlier.Number)
		}
	}

	return nil
}

// findByNumber returns the first non-revision thought with the given
// number, or nil.
func findByNumber(session []*thought.Thought, number int) *thought.Thought {
	for _, t := range session {
		if !t.IsRevision && t.Number == number {
			return t
		}
	}
	return nil
}
