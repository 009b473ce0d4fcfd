// Package stagnation detects repetitive or non-progressing reasoning by
// inspecting the trailing window of recorded history. Findings are
// advisory: they attach warnings to an admission but never block it.
//
// The detector reads raw history, not the session-filtered view. When
// stale entries from a previous session survive in history they can bleed
// into the window; this mirrors the established engine behavior and is
// deliberately left as is.
package stagnation

import (
	"fmt"

	"github.com/papercomputeco/weft/pkg/textmetric"
	"github.com/papercomputeco/weft/pkg/thought"
)

const (
	// windowSize is the number of trailing history thoughts inspected.
	windowSize = 3

	// baseThreshold is the similarity threshold for an empty history.
	baseThreshold = 0.60

	// maxThresholdBonus caps how far the adaptive threshold can climb.
	maxThresholdBonus = 0.25

	// thresholdSlope raises the threshold per history entry.
	thresholdSlope = 0.015

	// minStagnantLength exempts very short thoughts from the similarity rule.
	minStagnantLength = 20

	// lowEntropyThreshold marks vocabulary diversity as degenerate.
	lowEntropyThreshold = 0.25

	// lowConfidenceMean marks a declining confidence window as worrying.
	lowConfidenceMean = 5.0
)

// Kind labels the advisory finding. The checks form an ordered rule table;
// the first matching rule wins.
type Kind string

const (
	KindStagnation        Kind = "stagnation"
	KindLowEntropy        Kind = "low_entropy"
	KindConfidenceDecline Kind = "confidence_declining"
)

// Finding is an advisory detection result.
type Finding struct {
	Kind    Kind
	Message string
}

// AdaptiveThreshold returns the similarity threshold for a history of the
// given length: lenient early, strict late, bounded in [0.60, 0.85] and
// non-decreasing in history length.
func AdaptiveThreshold(historyLen int) float64 {
	bonus := float64(historyLen) * thresholdSlope
	if bonus > maxThresholdBonus {
		bonus = maxThresholdBonus
	}
	return baseThreshold + bonus
}

// Detect evaluates a candidate thought against the trailing window of raw
// history. Returns nil when the history is too short or no rule matches.
func Detect(text string, history []*thought.Thought, metrics *textmetric.Analyzer) *Finding {
	if len(history) < windowSize {
		return nil
	}

	window := history[len(history)-windowSize:]

	if f := detectSimilarity(text, window, len(history), metrics); f != nil {
		return f
	}
	if f := detectLowEntropy(text, window, metrics); f != nil {
		return f
	}
	return detectConfidenceDecline(window)
}

func detectSimilarity(text string, window []*thought.Thought, historyLen int, metrics *textmetric.Analyzer) *Finding {
	if len(text) <= minStagnantLength {
		return nil
	}

	threshold := AdaptiveThreshold(historyLen)
	for _, t := range window {
		if metrics.Jaccard(text, t.Text) <= threshold {
			return nil
		}
	}

	return &Finding{
		Kind:    KindStagnation,
		Message: fmt.Sprintf("stagnation: last %d thoughts overlap above threshold %.2f", windowSize, threshold),
	}
}

func detectLowEntropy(text string, window []*thought.Thought, metrics *textmetric.Analyzer) *Finding {
	if metrics.Entropy(text) >= lowEntropyThreshold {
		return nil
	}

	sum := 0.0
	for _, t := range window {
		sum += metrics.Entropy(t.Text)
	}
	if sum/float64(len(window)) >= lowEntropyThreshold {
		return nil
	}

	return &Finding{
		Kind:    KindLowEntropy,
		Message: fmt.Sprintf("low entropy: vocabulary diversity below %.2f across recent thoughts", lowEntropyThreshold),
	}
}

func detectConfidenceDecline(window []*thought.Thought) *Finding {
	var scores []int
	for _, t := range window {
		if t.Confidence != nil {
			scores = append(scores, *t.Confidence)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	sum := 0
	for i, s := range scores {
		if i > 0 && s > scores[i-1] {
			return nil
		}
		sum += s
	}

	mean := float64(sum) / float64(len(scores))
	if mean >= lowConfidenceMean {
		return nil
	}

	return &Finding{
		Kind:    KindConfidenceDecline,
		Message: fmt.Sprintf("confidence declining: recent mean %.1f is below %.0f", mean, lowConfidenceMean),
	}
}
