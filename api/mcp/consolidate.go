package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/weft/pkg/audit"
)

var (
	consolidateToolName    = "weft_consolidate"
	consolidateDescription = "Audit a candidate solution path against the current session: connectivity, confidence, unresolved blockers, and coverage. A needs_more_work verdict records the path as a dead end so it is not retried."
)

// ConsolidateInput represents the input arguments for the MCP weft_consolidate tool.
type ConsolidateInput struct {
	Path    []int  `json:"path" jsonschema:"thought numbers forming the candidate solution path"`
	Summary string `json:"summary" jsonschema:"summary of the reasoning path"`
	Verdict string `json:"verdict" jsonschema:"either ready or needs_more_work"`
}

// handleConsolidate processes a consolidation audit via MCP.
func (s *Server) handleConsolidate(ctx context.Context, _ *mcp.CallToolRequest, input ConsolidateInput) (*mcp.CallToolResult, *audit.Assessment, error) {
	assessment, err := s.config.Engine.Consolidate(ctx, input.Path, input.Summary, audit.Verdict(input.Verdict))
	if err != nil {
		s.config.Logger.Debug("consolidation rejected",
			zap.Ints("path", input.Path),
			zap.Error(err),
		)
		return errorResult(err.Error()), nil, nil
	}

	result, err := jsonResult(assessment)
	return result, assessment, err
}
