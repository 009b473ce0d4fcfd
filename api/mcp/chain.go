package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/weft/pkg/audit"
	"github.com/papercomputeco/weft/pkg/burst"
	"github.com/papercomputeco/weft/pkg/session"
	"github.com/papercomputeco/weft/pkg/thought"
)

var (
	chainToolName    = "weft_chain"
	chainDescription = "Submit a whole reasoning chain as one atomic burst. The batch is validated structurally and for content quality; any error rejects the entire batch and nothing is committed. On success the chain replaces the current session state."
)

// ChainInput represents the input arguments for the MCP weft_chain tool.
type ChainInput struct {
	Goal          string              `json:"goal" jsonschema:"the goal this chain works toward, at least 10 characters"`
	Thoughts      []ThinkInput        `json:"thoughts" jsonschema:"1 to 30 thoughts sorted by thought number"`
	Consolidation *ConsolidationBlock `json:"consolidation,omitempty" jsonschema:"optional consolidation of the submitted chain"`
}

// ConsolidationBlock is the optional consolidation submitted with a chain.
type ConsolidationBlock struct {
	Path    []int  `json:"path" jsonschema:"thought numbers forming the candidate solution path"`
	Summary string `json:"summary" jsonschema:"summary of the path"`
	Verdict string `json:"verdict" jsonschema:"either ready or needs_more_work"`
}

// handleChain processes an atomic batch submission via MCP.
func (s *Server) handleChain(ctx context.Context, _ *mcp.CallToolRequest, input ChainInput) (*mcp.CallToolResult, *session.BatchOutcome, error) {
	inputs := make([]thought.Input, 0, len(input.Thoughts))
	for _, t := range input.Thoughts {
		inputs = append(inputs, thought.Input{
			Thought:           t.Thought,
			ThoughtNumber:     t.ThoughtNumber,
			TotalThoughts:     t.TotalThoughts,
			NextThoughtNeeded: t.NextThoughtNeeded,
			Confidence:        t.Confidence,
			SubSteps:          t.SubSteps,
			Alternatives:      t.Alternatives,
			IsRevision:        t.IsRevision,
			RevisesThought:    t.RevisesThought,
			BranchFromThought: t.BranchFromThought,
			BranchID:          t.BranchID,
			Extensions:        t.Extensions,
		})
	}

	var cons *burst.ConsolidationInput
	if input.Consolidation != nil {
		cons = &burst.ConsolidationInput{
			Path:    input.Consolidation.Path,
			Summary: input.Consolidation.Summary,
			Verdict: audit.Verdict(input.Consolidation.Verdict),
		}
	}

	outcome, err := s.config.Engine.SubmitBatch(ctx, input.Goal, inputs, cons)
	if err != nil {
		s.config.Logger.Debug("batch rejected",
			zap.Int("thoughts", len(input.Thoughts)),
			zap.Error(err),
		)
		return errorResult(err.Error()), nil, nil
	}

	result, err := jsonResult(outcome)
	return result, outcome, err
}
