package api

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON error body for API failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSessionStats returns a point-in-time summary of the session.
func (s *Server) handleSessionStats(c *fiber.Ctx) error {
	return c.JSON(s.engine.Stats())
}
