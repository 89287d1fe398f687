package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/marcusholm/go-armctl/pkg/hub"
)

// handleStatus returns the harness summary.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.status)
}

// handleState returns the most recent loop snapshot.
func (s *Server) handleState(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.last)
}

// handleEvents returns retained discrete events, oldest first.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.events)
}

// handleStateWS streams telemetry events to a websocket client.
func (s *Server) handleStateWS(c *websocket.Conn) {
	client := hub.NewClient(s.stateHub, c)
	client.Run()
}
