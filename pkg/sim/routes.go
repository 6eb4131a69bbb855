package sim

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-dreamer/pkg/protocol"
)

// peer is one WebSocket client of the simulator.
type peer struct {
	id        string
	conn      *websocket.Conn
	connected time.Time

	mu sync.Mutex
}

func (p *peer) send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Simulator) registerRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/status", func(c *fiber.Ctx) error {
		state, detail := s.State()
		return c.JSON(protocol.StatusData{State: state, Detail: detail})
	})

	api.Post("/command", func(c *fiber.Ctx) error {
		if state, _ := s.State(); state == protocol.StateFault {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "controller fault"})
		}
		var cmd protocol.CommandData
		if err := c.BodyParser(&cmd); err != nil {
			s.rejected.Add(1)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if err := s.accept(&cmd); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Post("/fault", func(c *fiber.Ctx) error {
		var req struct {
			Detail string `json:"detail"`
		}
		c.BodyParser(&req)
		if req.Detail == "" {
			req.Detail = "injected"
		}
		s.SetState(protocol.StateFault, req.Detail)
		return c.JSON(fiber.Map{"state": protocol.StateFault})
	})

	api.Post("/clear", func(c *fiber.Ctx) error {
		s.SetState(protocol.StateReady, "")
		return c.JSON(fiber.Map{"state": protocol.StateReady})
	})

	api.Get("/last", func(c *fiber.Ctx) error {
		last := s.Last()
		if last == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no command yet"})
		}
		return c.JSON(last)
	})

	api.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.Stats())
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/command", websocket.New(s.handlePeer))
}

// handlePeer serves one WebSocket client: current status first, then
// commands in and status pushes out.
func (s *Simulator) handlePeer(c *websocket.Conn) {
	p := &peer{id: newPeerID(), conn: c, connected: time.Now()}

	s.mu.Lock()
	s.peers[p.id] = p
	n := len(s.peers)
	s.mu.Unlock()
	s.logger.Debug("peer connected", "peer", p.id, "peers", n)

	defer func() {
		s.mu.Lock()
		delete(s.peers, p.id)
		s.mu.Unlock()
		s.logger.Debug("peer disconnected", "peer", p.id, "connected_for", time.Since(p.connected))
	}()

	state, detail := s.State()
	if msg, err := protocol.NewStatusMessage(state, detail); err == nil {
		if err := p.send(msg); err != nil {
			return
		}
	}

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			s.rejected.Add(1)
			continue
		}

		switch msg.Type {
		case protocol.TypeCommand:
			cmd, err := msg.GetCommandData()
			if err != nil {
				s.rejected.Add(1)
				continue
			}
			if state, _ := s.State(); state == protocol.StateFault {
				s.rejected.Add(1)
				continue
			}
			if err := s.accept(cmd); err != nil {
				s.logger.Debug("rejected command", "peer", p.id, "error", err)
			}
		case protocol.TypePing:
			ping, err := msg.GetPingData()
			if err != nil {
				continue
			}
			if pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp); err == nil {
				p.send(pong)
			}
		}
	}
}
