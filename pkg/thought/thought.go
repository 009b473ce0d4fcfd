// Package thought defines the data model for the weft reasoning chain:
// thoughts, extensions, branches, and dead ends. Types here are pure data -
// validation and sequencing rules live in pkg/validate and friends.
package thought

import (
	"time"
)

const (
	// MaxSubSteps caps the number of sub-steps a single thought may carry.
	MaxSubSteps = 5

	// MaxAlternatives caps the number of alternatives a single thought may carry.
	MaxAlternatives = 5

	// MinConfidence and MaxConfidence bound the optional confidence score.
	MinConfidence = 1
	MaxConfidence = 10
)

// ExtensionKind identifies the kind of annotation attached to a thought.
type ExtensionKind string

const (
	ExtensionCritique            ExtensionKind = "critique"
	ExtensionElaboration         ExtensionKind = "elaboration"
	ExtensionCorrection          ExtensionKind = "correction"
	ExtensionAlternativeScenario ExtensionKind = "alternative_scenario"
	ExtensionAssumptionTesting   ExtensionKind = "assumption_testing"
	ExtensionInnovation          ExtensionKind = "innovation"
	ExtensionOptimization        ExtensionKind = "optimization"
	ExtensionPolish              ExtensionKind = "polish"
)

// Impact grades how severely an extension affects its thought.
type Impact string

const (
	ImpactLow     Impact = "low"
	ImpactMedium  Impact = "medium"
	ImpactHigh    Impact = "high"
	ImpactBlocker Impact = "blocker"
)

// ValidExtensionKind reports whether k is a recognized extension kind.
func ValidExtensionKind(k ExtensionKind) bool {
	switch k {
	case ExtensionCritique, ExtensionElaboration, ExtensionCorrection,
		ExtensionAlternativeScenario, ExtensionAssumptionTesting,
		ExtensionInnovation, ExtensionOptimization, ExtensionPolish:
		return true
	}
	return false
}

// ValidImpact reports whether i is a recognized impact grade.
func ValidImpact(i Impact) bool {
	switch i {
	case ImpactLow, ImpactMedium, ImpactHigh, ImpactBlocker:
		return true
	}
	return false
}

// Extension is a typed annotation owned by exactly one thought.
type Extension struct {
	Kind      ExtensionKind `json:"kind"`
	Text      string        `json:"text"`
	Impact    Impact        `json:"impact"`
	CreatedAt time.Time     `json:"created_at"`
}

// Thought is one discrete recorded reasoning unit in a session chain.
type Thought struct {
	// Number is the 1-based position of the thought. Unique among
	// non-revisions within a session.
	Number int `json:"thought_number"`

	// Text is the free-text content of the thought.
	Text string `json:"thought"`

	// Confidence is an optional 1-10 self-assessment. Nil when unset.
	Confidence *int `json:"confidence,omitempty"`

	// SubSteps holds up to MaxSubSteps decomposition steps.
	SubSteps []string `json:"sub_steps,omitempty"`

	// Alternatives holds up to MaxAlternatives considered alternatives.
	Alternatives []string `json:"alternatives,omitempty"`

	// IsRevision marks this thought as superseding an earlier one.
	IsRevision bool `json:"is_revision,omitempty"`

	// RevisesThought is the number of the thought being revised.
	RevisesThought *int `json:"revises_thought,omitempty"`

	// BranchFromThought is the number of the thought this branch forks from.
	BranchFromThought *int `json:"branch_from_thought,omitempty"`

	// BranchID names the branch this thought belongs to, if any.
	BranchID string `json:"branch_id,omitempty"`

	// Extensions are annotations attached to this thought.
	Extensions []Extension `json:"extensions,omitempty"`

	// CreatedAt is the admission timestamp.
	CreatedAt time.Time `json:"created_at"`

	// SessionID is the owning session.
	SessionID string `json:"session_id"`
}

// HasExtension reports whether the thought carries an extension matching
// the given kind and minimum impact.
func (t *Thought) HasExtension(kind ExtensionKind, impact Impact) bool {
	for _, ext := range t.Extensions {
		if ext.Kind == kind && ext.Impact == impact {
			return true
		}
	}
	return false
}

// DeadEnd is a reasoning path explicitly marked unsuccessful, retained so
// the same path is not retried.
type DeadEnd struct {
	Path      []int     `json:"path"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	SessionID string    `json:"session_id"`
}

// Input is a candidate thought as submitted by a caller, before admission.
type Input struct {
	Thought           string           `json:"thought"`
	ThoughtNumber     int              `json:"thought_number"`
	TotalThoughts     int              `json:"total_thoughts"`
	NextThoughtNeeded bool             `json:"next_thought_needed"`
	Confidence        *int             `json:"confidence,omitempty"`
	SubSteps          []string         `json:"sub_steps,omitempty"`
	Alternatives      []string         `json:"alternatives,omitempty"`
	IsRevision        bool             `json:"is_revision,omitempty"`
	RevisesThought    *int             `json:"revises_thought,omitempty"`
	BranchFromThought *int             `json:"branch_from_thought,omitempty"`
	BranchID          string           `json:"branch_id,omitempty"`
	Extensions        []ExtensionInput `json:"extensions,omitempty"`
}

// ExtensionInput is a candidate extension as submitted by a caller.
type ExtensionInput struct {
	Kind   ExtensionKind `json:"kind"`
	Text   string        `json:"text"`
	Impact Impact        `json:"impact"`
}

// Materialize converts an accepted input into a canonical Thought owned by
// the given session. The caller is responsible for having validated the
// input first.
func (in *Input) Materialize(sessionID string, now time.Time) *Thought {
	t := &Thought{
		Number:            in.ThoughtNumber,
		Text:              in.Thought,
		Confidence:        in.Confidence,
		SubSteps:          capStrings(in.SubSteps, MaxSubSteps),
		Alternatives:      capStrings(in.Alternatives, MaxAlternatives),
		IsRevision:        in.IsRevision,
		RevisesThought:    in.RevisesThought,
		BranchFromThought: in.BranchFromThought,
		BranchID:          in.BranchID,
		CreatedAt:         now,
		SessionID:         sessionID,
	}

	for _, ext := range in.Extensions {
		t.Extensions = append(t.Extensions, Extension{
			Kind:      ext.Kind,
			Text:      ext.Text,
			Impact:    ext.Impact,
			CreatedAt: now,
		})
	}

	return t
}

func capStrings(in []string, maxLen int) []string {
	if len(in) <= maxLen {
		return in
	}
	return in[:maxLen]
}
