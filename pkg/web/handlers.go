package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-dreamer/pkg/hub"
)

// ConfirmRequest is the body of POST /api/confirm.
type ConfirmRequest struct {
	Continue *bool `json:"continue"`
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

func (s *Server) handleGesture(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.steps == nil {
		return c.JSON([]TrajectorySummary{})
	}
	return c.JSON(s.steps)
}

func (s *Server) handleGetConfirm(c *fiber.Ctx) error {
	prompt := s.confirm.pendingPrompt()
	return c.JSON(fiber.Map{
		"pending": prompt != "",
		"prompt":  prompt,
	})
}

func (s *Server) handleConfirm(c *fiber.Ctx) error {
	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil || req.Continue == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": `expected {"continue": true|false}`,
		})
	}

	if err := s.confirm.answer(*req.Continue); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrNoPendingPrompt) {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"continue": *req.Continue})
}

func (s *Server) handleFramesWS(c *websocket.Conn) {
	hub.NewClient(s.frameHub, c).Run()
}

func (s *Server) handleStatusWS(c *websocket.Conn) {
	// Current status first, then live playback messages.
	c.WriteJSON(s.Status())
	hub.NewClient(s.statusHub, c).Run()
}
