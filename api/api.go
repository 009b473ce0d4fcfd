// Package api provides the HTTP server for the weft engine: a health
// check, session statistics, and the MCP endpoint.
package api

import (
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/weft/pkg/session"
)

// Config holds API server settings.
type Config struct {
	// ListenAddr is the address the server binds to.
	ListenAddr string
}

// Server is the API server fronting the session engine.
type Server struct {
	config Config
	engine *session.Engine
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server. The engine is injected so the MCP
// endpoint and the REST routes share one set of session state.
func NewServer(config Config, engine *session.Engine, mcpHandler http.Handler, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		engine: engine,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/session/stats", s.handleSessionStats)

	if mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying fiber app. Exposed for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
