package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/weft/pkg/session"
)

var (
	resetToolName    = "weft_reset"
	resetDescription = "Wipe the current session: thoughts, branches, dead ends, and goal. The persisted snapshot is removed and a fresh session id is assigned."
)

// ResetInput represents the input arguments for the MCP weft_reset tool.
type ResetInput struct{}

// handleReset processes a session reset via MCP.
func (s *Server) handleReset(ctx context.Context, _ *mcp.CallToolRequest, _ ResetInput) (*mcp.CallToolResult, *session.ResetResult, error) {
	cleared := s.config.Engine.Reset(ctx)

	result, err := jsonResult(cleared)
	return result, cleared, err
}
