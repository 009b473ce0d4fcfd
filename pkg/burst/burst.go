// Package burst validates a whole reasoning chain submitted as one atomic
// unit. Any error rejects the entire batch; nothing is committed. On
// success the sanitized inputs convert 1:1 to canonical thoughts and
// replace the prior session state.
package burst

import (
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/papercomputeco/weft/pkg/audit"
	"github.com/papercomputeco/weft/pkg/textmetric"
	"github.com/papercomputeco/weft/pkg/thought"
)

const (
	// MinGoalLength is the minimum goal text length.
	MinGoalLength = 10

	// MinBatchSize and MaxBatchSize bound the number of thoughts per batch.
	MinBatchSize = 1
	MaxBatchSize = 30

	// MinThoughtLength and MaxThoughtLength bound per-thought content.
	// Over-length content is truncated with a warning; under-length is an
	// error.
	MinThoughtLength = 50
	MaxThoughtLength = 1000

	// stagnationMinBatch is the batch size at which the similarity check
	// applies.
	stagnationMinBatch = 3

	// maxMeanSimilarity rejects batches whose consecutive thoughts overlap
	// too heavily.
	maxMeanSimilarity = 0.60

	// advisoryMinBatch is the batch size at which the entropy and
	// confidence warnings apply.
	advisoryMinBatch = 5

	// lowEntropyMean and lowConfidenceMean trigger non-blocking warnings.
	lowEntropyMean    = 0.25
	lowConfidenceMean = 4.0
)

// ConsolidationInput is the optional consolidation block submitted with a
// batch.
type ConsolidationInput struct {
	Path    []int         `json:"path"`
	Summary string        `json:"summary"`
	Verdict audit.Verdict `json:"verdict"`
}

// Metrics summarizes the accepted batch.
type Metrics struct {
	ThoughtCount              int     `json:"thought_count"`
	MeanLength                float64 `json:"mean_length"`
	MeanEntropy               float64 `json:"mean_entropy"`
	MeanConfidence            float64 `json:"mean_confidence,omitempty"`
	MeanConsecutiveSimilarity float64 `json:"mean_consecutive_similarity,omitempty"`
}

// Outcome is the result of a successful batch validation.
type Outcome struct {
	// Inputs are the sanitized inputs (over-length content truncated),
	// ready to materialize.
	Inputs []thought.Input

	Metrics  Metrics
	Warnings []string

	// Audit is the consolidation assessment, when a consolidation block
	// was submitted.
	Audit *audit.Assessment
}

// Validate checks the whole batch: structure, content, stagnation, and the
// optional consolidation block. The first error aborts validation and the
// batch must not be committed.
func Validate(goal string, inputs []thought.Input, cons *ConsolidationInput, metrics *textmetric.Analyzer) (*Outcome, error) {
	if len(goal) < MinGoalLength {
		return nil, fmt.Errorf("goal must be at least %d characters", MinGoalLength)
	}
	if len(inputs) < MinBatchSize || len(inputs) > MaxBatchSize {
		return nil, fmt.Errorf("batch must contain between %d and %d thoughts, got %d", MinBatchSize, MaxBatchSize, len(inputs))
	}

	if !sort.SliceIsSorted(inputs, func(i, j int) bool {
		return inputs[i].ThoughtNumber < inputs[j].ThoughtNumber
	}) {
		return nil, fmt.Errorf("batch thoughts must be sorted by thought number")
	}

	if err := checkNumbering(inputs); err != nil {
		return nil, err
	}
	if err := checkReferences(inputs); err != nil {
		return nil, err
	}

	out := &Outcome{Inputs: make([]thought.Input, len(inputs))}
	copy(out.Inputs, inputs)

	if err := checkContent(out); err != nil {
		return nil, err
	}

	computeMetrics(out, metrics)

	if len(out.Inputs) >= stagnationMinBatch && out.Metrics.MeanConsecutiveSimilarity > maxMeanSimilarity {
		return nil, fmt.Errorf("batch stagnation: mean consecutive similarity %.2f exceeds %.2f", out.Metrics.MeanConsecutiveSimilarity, maxMeanSimilarity)
	}

	if len(out.Inputs) >= advisoryMinBatch {
		if out.Metrics.MeanEntropy < lowEntropyMean {
			out.Warnings = append(out.Warnings, "low vocabulary diversity across batch")
		}
		if out.Metrics.MeanConfidence > 0 && out.Metrics.MeanConfidence < lowConfidenceMean {
			out.Warnings = append(out.Warnings, "low average confidence across batch")
		}
	}

	if cons != nil {
		if err := checkConsolidation(out, cons); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// checkNumbering requires non-revision numbers to form a contiguous 1..N
// run with no duplicates.
func checkNumbering(inputs []thought.Input) error {
	seen := make(map[int]bool)
	count := 0

	for _, in := range inputs {
		if in.IsRevision {
			continue
		}
		if seen[in.ThoughtNumber] {
			return fmt.Errorf("duplicate thought number %d in batch", in.ThoughtNumber)
		}
		seen[in.ThoughtNumber] = true
		count++
	}

	for n := 1; n <= count; n++ {
		if !seen[n] {
			return fmt.Errorf("non-revision thoughts must form a contiguous run from 1 to %d", count)
		}
	}

	return nil
}

// checkReferences requires every revision target and branch origin to
// exist within the batch.
func checkReferences(inputs []thought.Input) error {
	numbers := make(map[int]bool)
	for _, in := range inputs {
		if !in.IsRevision {
			numbers[in.ThoughtNumber] = true
		}
	}

	for _, in := range inputs {
		if in.IsRevision {
			if in.RevisesThought == nil || !numbers[*in.RevisesThought] {
				return fmt.Errorf("thought %d: revision target is not in the batch", in.ThoughtNumber)
			}
		}
		if in.BranchFromThought != nil && !numbers[*in.BranchFromThought] {
			return fmt.Errorf("thought %d: branch source %d is not in the batch", in.ThoughtNumber, *in.BranchFromThought)
		}
	}

	return nil
}

// checkContent enforces per-thought length bounds, truncating over-length
// content in place with a warning.
func checkContent(out *Outcome) error {
	for i := range out.Inputs {
		in := &out.Inputs[i]
		if len(in.Thought) < MinThoughtLength {
			return fmt.Errorf("thought %d: content must be at least %d characters", in.ThoughtNumber, MinThoughtLength)
		}
		if len(in.Thought) > MaxThoughtLength {
			// Never cut mid-rune: the truncated text must stay valid UTF-8
			// through the persistence round trip.
			cut := MaxThoughtLength
			for cut > 0 && !utf8.RuneStart(in.Thought[cut]) {
				cut--
			}
			in.Thought = in.Thought[:cut]
			out.Warnings = append(out.Warnings, fmt.Sprintf("thought %d: content truncated to %d characters", in.ThoughtNumber, MaxThoughtLength))
		}
	}
	return nil
}

func computeMetrics(out *Outcome, metrics *textmetric.Analyzer) {
	var lengthSum, entropySum, similaritySum float64
	var confidenceSum, confidenceCount int

	for i := range out.Inputs {
		in := &out.Inputs[i]
		lengthSum += float64(len(in.Thought))
		entropySum += metrics.Entropy(in.Thought)
		if in.Confidence != nil {
			confidenceSum += *in.Confidence
			confidenceCount++
		}
		if i > 0 {
			similaritySum += metrics.Jaccard(out.Inputs[i-1].Thought, in.Thought)
		}
	}

	n := float64(len(out.Inputs))
	out.Metrics = Metrics{
		ThoughtCount: len(out.Inputs),
		MeanLength:   lengthSum / n,
		MeanEntropy:  entropySum / n,
	}
	if confidenceCount > 0 {
		out.Metrics.MeanConfidence = float64(confidenceSum) / float64(confidenceCount)
	}
	if len(out.Inputs) > 1 {
		out.Metrics.MeanConsecutiveSimilarity = similaritySum / float64(len(out.Inputs)-1)
	}
}

// checkConsolidation audits the optional consolidation block. Path gaps
// are warnings here (the path may reference the batch being built), but an
// unresolved blocker under a "ready" verdict rejects the batch.
func checkConsolidation(out *Outcome, cons *ConsolidationInput) error {
	if !audit.ValidVerdict(cons.Verdict) {
		return fmt.Errorf("invalid consolidation verdict %q", cons.Verdict)
	}

	now := time.Now()
	converted := make([]*thought.Thought, 0, len(out.Inputs))
	for i := range out.Inputs {
		converted = append(converted, out.Inputs[i].Materialize("", now))
	}

	assessment, err := audit.Run(cons.Path, cons.Verdict, converted, audit.Options{LenientMissing: true})
	if err != nil {
		return err
	}

	if cons.Verdict == audit.VerdictReady && len(assessment.UnresolvedBlockers) > 0 {
		return fmt.Errorf("unresolved blocker on thought %d under ready verdict", assessment.UnresolvedBlockers[0])
	}

	out.Audit = assessment
	out.Warnings = append(out.Warnings, assessment.Warnings...)

	return nil
}
