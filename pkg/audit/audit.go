// Package audit implements the consolidation audit: the rules that certify
// a subset of session thoughts as the final justified path. Findings
// accumulate as soft warnings; only a path member missing from the session
// is a hard error (unless the caller opts into lenient mode, as the burst
// validator does).
package audit

import (
	"fmt"

	"github.com/papercomputeco/weft/pkg/pathcheck"
	"github.com/papercomputeco/weft/pkg/thought"
)

// Verdict is the caller's claim about the path.
type Verdict string

const (
	VerdictReady         Verdict = "ready"
	VerdictNeedsMoreWork Verdict = "needs_more_work"
)

// ValidVerdict reports whether v is a recognized verdict.
func ValidVerdict(v Verdict) bool {
	return v == VerdictReady || v == VerdictNeedsMoreWork
}

const (
	// lowConfidence flags path members below this score.
	lowConfidence = 5

	// maxIgnoredRatio caps how much of the session a path may ignore.
	maxIgnoredRatio = 0.6

	// maxWarnings is the warning budget for a proceedable path.
	maxWarnings = 1

	// smallSession is the session size above which single-thought paths
	// draw a warning.
	smallSession = 3
)

// Options tune audit strictness.
type Options struct {
	// LenientMissing downgrades unknown path members from hard errors to
	// warnings. Used when auditing a batch whose path may reference
	// thoughts outside the submitted range.
	LenientMissing bool
}

// PathAnalysis summarizes the audited path.
type PathAnalysis struct {
	PathLength   int              `json:"path_length"`
	SessionSize  int              `json:"session_size"`
	IgnoredRatio float64          `json:"ignored_ratio"`
	Connectivity pathcheck.Result `json:"connectivity"`
}

// Assessment is the audit outcome.
type Assessment struct {
	Warnings   []string     `json:"warnings"`
	CanProceed bool         `json:"can_proceed"`
	Analysis   PathAnalysis `json:"path_analysis"`

	// UnresolvedBlockers lists path members carrying a blocker extension
	// with no revision in the session.
	UnresolvedBlockers []int `json:"unresolved_blockers,omitempty"`

	// blocking is set when any blocker, critical critique, or excluded
	// revision finding occurred.
	blocking bool
}

// Blocking reports whether the audit found a blocker-class problem.
func (a *Assessment) Blocking() bool {
	return a.blocking
}

// Run audits a candidate path against the session under the given verdict.
func Run(path []int, verdict Verdict, session []*thought.Thought, opts Options) (*Assessment, error) {
	index := make(map[int]*thought.Thought, len(session))
	for _, t := range session {
		index[t.Number] = t
	}

	a := &Assessment{}

	for _, n := range path {
		if _, ok := index[n]; ok {
			continue
		}
		if !opts.LenientMissing {
			return nil, fmt.Errorf("path thought %d does not exist in session", n)
		}
		a.warn("path references unknown thought %d", n)
	}

	connectivity := pathcheck.Validate(path, session)
	if !connectivity.Valid {
		a.warn("path connectivity broken at thought %d", connectivity.DisconnectedAt)
	}

	sessionSize := len(session)
	ignored := 0.0
	if sessionSize > 0 {
		ignored = 1.0 - float64(len(path))/float64(sessionSize)
	}
	a.Analysis = PathAnalysis{
		PathLength:   len(path),
		SessionSize:  sessionSize,
		IgnoredRatio: ignored,
		Connectivity: connectivity,
	}

	if ignored > maxIgnoredRatio {
		a.warn("path covers only %d of %d session thoughts", len(path), sessionSize)
	}

	inPath := make(map[int]bool, len(path))
	for _, n := range path {
		inPath[n] = true
	}

	for _, n := range path {
		member := index[n]
		if member == nil {
			continue
		}

		if member.Confidence != nil && *member.Confidence < lowConfidence {
			a.warn("thought %d has low confidence", n)
		}

		revision := findRevisionOf(session, n)
		critical := false

		if hasBlocker(member) {
			critical = true
			if revision == nil {
				a.warn("unresolved blocker on thought %d", n)
				a.UnresolvedBlockers = append(a.UnresolvedBlockers, n)
				a.blocking = true
			}
		}

		if member.HasExtension(thought.ExtensionCritique, thought.ImpactHigh) {
			critical = true
			if revision == nil {
				a.warn("unresolved critique on thought %d", n)
				a.blocking = true
			}
		}

		if critical && revision != nil && !inPath[revision.Number] {
			a.warn("revision of thought %d exists but is excluded from the path", n)
			a.blocking = true
		}
	}

	switch {
	case len(path) == 0:
		a.warn("empty path")
	case len(path) == 1 && sessionSize > smallSession:
		a.warn("single-thought path for a session of %d", sessionSize)
	}

	a.CanProceed = verdict == VerdictReady &&
		!a.blocking &&
		connectivity.Valid &&
		len(a.Warnings) <= maxWarnings

	return a, nil
}

func (a *Assessment) warn(format string, args ...any) {
	a.Warnings = append(a.Warnings, fmt.Sprintf(format, args...))
}

// hasBlocker reports whether the thought carries a blocker-impact
// extension of any kind.
func hasBlocker(t *thought.Thought) bool {
	for _, ext := range t.Extensions {
		if ext.Impact == thought.ImpactBlocker {
			return true
		}
	}
	return false
}

// findRevisionOf returns the first revision targeting the given number.
func findRevisionOf(session []*thought.Thought, number int) *thought.Thought {
	for _, t := range session {
		if t.IsRevision && t.RevisesThought != nil && *t.RevisesThought == number {
			return t
		}
	}
	return nil
}
