package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/weft/pkg/session"
	"github.com/papercomputeco/weft/pkg/thought"
)

var (
	thinkToolName    = "weft_think"
	thinkDescription = "Record one reasoning step in the current session. Supports linear continuation, revisions of earlier thoughts (is_revision + revises_thought), and named branches (branch_from_thought + branch_id). Returns the admission outcome with any advisory warnings, such as detected stagnation."
)

// ThinkInput represents the input arguments for the MCP weft_think tool.
type ThinkInput struct {
	Thought           string                   `json:"thought" jsonschema:"the reasoning step text"`
	ThoughtNumber     int                      `json:"thought_number" jsonschema:"1-based position of this thought in the chain"`
	TotalThoughts     int                      `json:"total_thoughts,omitempty" jsonschema:"estimated total thoughts in the chain"`
	NextThoughtNeeded bool                     `json:"next_thought_needed,omitempty" jsonschema:"whether further thoughts are expected"`
	Confidence        *int                     `json:"confidence,omitempty" jsonschema:"optional 1-10 confidence score"`
	SubSteps          []string                 `json:"sub_steps,omitempty" jsonschema:"up to 5 decomposition sub-steps"`
	Alternatives      []string                 `json:"alternatives,omitempty" jsonschema:"up to 5 considered alternatives"`
	IsRevision        bool                     `json:"is_revision,omitempty" jsonschema:"whether this thought revises an earlier one"`
	RevisesThought    *int                     `json:"revises_thought,omitempty" jsonschema:"number of the thought being revised"`
	BranchFromThought *int                     `json:"branch_from_thought,omitempty" jsonschema:"number of the thought this branch forks from"`
	BranchID          string                   `json:"branch_id,omitempty" jsonschema:"name of the branch this thought belongs to"`
	Extensions        []thought.ExtensionInput `json:"extensions,omitempty" jsonschema:"typed annotations such as critiques or corrections"`
}

// handleThink processes a single-thought submission via MCP.
func (s *Server) handleThink(ctx context.Context, _ *mcp.CallToolRequest, input ThinkInput) (*mcp.CallToolResult, *session.Admission, error) {
	in := &thought.Input{
		Thought:           input.Thought,
		ThoughtNumber:     input.ThoughtNumber,
		TotalThoughts:     input.TotalThoughts,
		NextThoughtNeeded: input.NextThoughtNeeded,
		Confidence:        input.Confidence,
		SubSteps:          input.SubSteps,
		Alternatives:      input.Alternatives,
		IsRevision:        input.IsRevision,
		RevisesThought:    input.RevisesThought,
		BranchFromThought: input.BranchFromThought,
		BranchID:          input.BranchID,
		Extensions:        input.Extensions,
	}

	admission, err := s.config.Engine.SubmitThought(ctx, in)
	if err != nil {
		s.config.Logger.Debug("thought rejected",
			zap.Int("thought_number", input.ThoughtNumber),
			zap.Error(err),
		)
		return errorResult(err.Error()), nil, nil
	}

	result, err := jsonResult(admission)
	return result, admission, err
}
