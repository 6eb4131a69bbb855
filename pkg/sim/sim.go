// Package sim is a stand-in for the whole-body controller.
//
// It speaks the same HTTP and WebSocket API as the real controller, accepts
// and validates command frames, and lets tests and dry runs inject faults.
package sim

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-dreamer/internal/log"
	"github.com/teslashibe/go-dreamer/pkg/protocol"
	"github.com/teslashibe/go-dreamer/pkg/trajectory"
)

// Options configures a Simulator.
type Options struct {
	// ReadyAfter delays readiness after New, like a controller booting.
	ReadyAfter time.Duration

	Logger *slog.Logger
}

// Stats counts simulator traffic.
type Stats struct {
	State    string `json:"state"`
	Peers    int    `json:"peers"`
	Commands uint64 `json:"commands"`
	Rejected uint64 `json:"rejected"`
	Faults   uint64 `json:"faults"`
}

// Simulator is a fake controller.
type Simulator struct {
	app    *fiber.App
	logger *slog.Logger

	mu     sync.RWMutex
	state  string
	detail string
	last   *protocol.CommandData
	peers  map[string]*peer

	commands atomic.Uint64
	rejected atomic.Uint64
	faults   atomic.Uint64

	readyTimer *time.Timer
}

// New creates a simulator with its routes registered.
func New(opts Options) *Simulator {
	if opts.Logger == nil {
		opts.Logger = log.For("sim")
	}
	s := &Simulator{
		logger: opts.Logger,
		state:  protocol.StateReady,
		peers:  make(map[string]*peer),
	}
	if opts.ReadyAfter > 0 {
		s.state, s.detail = protocol.StateNotReady, "starting"
		s.readyTimer = time.AfterFunc(opts.ReadyAfter, func() {
			s.SetState(protocol.StateReady, "")
		})
	}

	app := fiber.New(fiber.Config{
		AppName:               "Dreamer Controller Simulator",
		DisableStartupMessage: true,
	})
	s.registerRoutes(app)
	s.app = app
	return s
}

// App returns the fiber app, for app.Test in tests.
func (s *Simulator) App() *fiber.App { return s.app }

// Listen serves on addr until ctx is done.
func (s *Simulator) Listen(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Simulator) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		if s.readyTimer != nil {
			s.readyTimer.Stop()
		}
		s.app.Shutdown()
	}()
	s.logger.Info("controller simulator listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// State returns the reported controller state and its detail.
func (s *Simulator) State() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.detail
}

// SetState changes the reported state and pushes it to every WebSocket peer.
func (s *Simulator) SetState(state, detail string) {
	s.mu.Lock()
	changed := s.state != state
	s.state, s.detail = state, detail
	s.mu.Unlock()

	if state == protocol.StateFault && changed {
		s.faults.Add(1)
	}
	if changed {
		s.logger.Info("state changed", "state", state, "detail", detail)
	}

	msg, err := protocol.NewStatusMessage(state, detail)
	if err != nil {
		return
	}
	s.broadcast(msg)
}

// Last returns a copy of the last accepted command, or nil.
func (s *Simulator) Last() *protocol.CommandData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	c := *s.last
	return &c
}

// Stats returns traffic counters.
func (s *Simulator) Stats() Stats {
	s.mu.RLock()
	st := Stats{State: s.state, Peers: len(s.peers)}
	s.mu.RUnlock()
	st.Commands = s.commands.Load()
	st.Rejected = s.rejected.Load()
	st.Faults = s.faults.Load()
	return st
}

// accept validates and records one command.
func (s *Simulator) accept(cmd *protocol.CommandData) error {
	if err := cmd.Validate(trajectory.PostureDOF); err != nil {
		s.rejected.Add(1)
		return err
	}
	s.mu.Lock()
	s.last = cmd
	s.mu.Unlock()
	s.commands.Add(1)
	return nil
}

func (s *Simulator) broadcast(msg *protocol.Message) {
	s.mu.RLock()
	peers := make([]*peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.RUnlock()

	for _, p := range peers {
		if err := p.send(msg); err != nil {
			s.logger.Debug("status push failed", "peer", p.id, "error", err)
		}
	}
}

func newPeerID() string { return uuid.NewString() }
