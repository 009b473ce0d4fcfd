// Package mcp provides the MCP (Model Context Protocol) server for the
// weft engine. It is a thin translation layer: tool inputs map 1:1 onto
// engine operations and results are returned as JSON text content.
package mcp

import (
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/weft/pkg/session"
	"github.com/papercomputeco/weft/pkg/utils"
)

type Config struct {
	// Engine is the session engine all tools operate on.
	Engine *session.Engine

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server exposing the engine tools.
func NewServer(c Config) (*Server, error) {
	if c.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "weft",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        thinkToolName,
		Description: thinkDescription,
	}, s.handleThink)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        chainToolName,
		Description: chainDescription,
	}, s.handleChain)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        consolidateToolName,
		Description: consolidateDescription,
	}, s.handleConsolidate)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        resetToolName,
		Description: resetDescription,
	}, s.handleReset)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
