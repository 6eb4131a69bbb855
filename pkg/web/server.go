// Package web serves the playback dashboard.
//
// The Server is a player.Sink: wire it next to the controller with
// controller.NewFanOut and it streams decimated frames to /ws/frames. It also
// answers the sequence's confirmation prompts from the browser.
package web

import (
	"context"
	_ "embed"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-dreamer/internal/log"
	"github.com/teslashibe/go-dreamer/pkg/gesture"
	"github.com/teslashibe/go-dreamer/pkg/hub"
	"github.com/teslashibe/go-dreamer/pkg/player"
	"github.com/teslashibe/go-dreamer/pkg/protocol"
	"github.com/teslashibe/go-dreamer/pkg/trajectory"
)

//go:embed static/index.html
var indexHTML []byte

// DefaultFrameDecimation streams 1 in 20 frames: 50 Hz at a 1 kHz tick.
const DefaultFrameDecimation = 20

// Status is the dashboard's view of playback.
type Status struct {
	RunID      string       `json:"run_id,omitempty"`
	Gesture    string       `json:"gesture,omitempty"`
	Trajectory string       `json:"trajectory,omitempty"`
	State      string       `json:"state"`
	Frames     uint64       `json:"frames"`
	T          float64      `json:"t"`
	Controller string       `json:"controller,omitempty"`
	Prompt     string       `json:"prompt,omitempty"`
	Last       *StepSummary `json:"last,omitempty"`
}

// StepSummary describes a finished play.
type StepSummary struct {
	Trajectory  string  `json:"trajectory"`
	Iteration   int     `json:"iteration"`
	State       string  `json:"state"`
	Frames      uint64  `json:"frames"`
	LastT       float64 `json:"last_t"`
	ElapsedMs   int64   `json:"elapsed_ms"`
	MaxJitterUs int64   `json:"max_jitter_us"`
	Overruns    int     `json:"overruns"`
	Error       string  `json:"error,omitempty"`
}

// TrajectorySummary describes one step of the loaded gesture.
type TrajectorySummary struct {
	Name      string         `json:"name"`
	Duration  float64        `json:"duration"`
	After     string         `json:"after,omitempty"`
	Repeat    bool           `json:"repeat,omitempty"`
	Waypoints map[string]int `json:"waypoints"`
}

// Options configures a Server.
type Options struct {
	Port            string
	FrameDecimation int
	Logger          *slog.Logger
}

// Server is the dashboard server.
type Server struct {
	app        *fiber.App
	port       string
	decimation uint64
	logger     *slog.Logger

	frameHub  *hub.Hub
	statusHub *hub.Hub
	confirm   *webConfirmer

	mu        sync.RWMutex
	status    Status
	steps     []TrajectorySummary
	readiness player.Readiness
}

// NewServer creates the dashboard. Call Start to serve it.
func NewServer(opts Options) *Server {
	if opts.FrameDecimation <= 0 {
		opts.FrameDecimation = DefaultFrameDecimation
	}
	if opts.Logger == nil {
		opts.Logger = log.For("web")
	}

	s := &Server{
		port:       opts.Port,
		decimation: uint64(opts.FrameDecimation),
		logger:     opts.Logger,
		frameHub:   hub.New("frames"),
		statusHub:  hub.New("status"),
		status:     Status{State: player.StateIdle.String()},
	}
	s.confirm = newWebConfirmer(s)

	app := fiber.New(fiber.Config{
		AppName:               "Dreamer Dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html")
		return c.Send(indexHTML)
	})

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/gesture", s.handleGesture)
	api.Get("/confirm", s.handleGetConfirm)
	api.Post("/confirm", s.handleConfirm)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start runs the hubs and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	go s.frameHub.Run(ctx)
	go s.statusHub.Run(ctx)

	go func() {
		<-ctx.Done()
		s.app.Shutdown()
	}()

	s.logger.Info("dashboard listening", "url", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// SetGesture publishes the loaded gesture's steps.
func (s *Server) SetGesture(g *gesture.Gesture) {
	steps := make([]TrajectorySummary, 0, len(g.Steps))
	for _, st := range g.Steps {
		tr := st.Trajectory
		sum := TrajectorySummary{
			Name:      tr.Name(),
			Duration:  tr.Duration(),
			Repeat:    st.Repeat,
			Waypoints: make(map[string]int),
		}
		if p := tr.Predecessor(); p != nil {
			sum.After = p.Name()
		}
		for _, ch := range trajectory.Channels {
			sum.Waypoints[ch.String()] = tr.Len(ch)
		}
		steps = append(steps, sum)
	}

	s.mu.Lock()
	s.steps = steps
	s.status.Gesture = g.Name
	s.mu.Unlock()
}

// SetReadiness sets where the controller status shown on the dashboard comes from.
func (s *Server) SetReadiness(r player.Readiness) {
	s.mu.Lock()
	s.readiness = r
	s.mu.Unlock()
}

// Send implements player.Sink. It never fails, so a slow dashboard cannot
// abort playback.
func (s *Server) Send(ctx context.Context, f player.Frame) error {
	s.mu.Lock()
	s.status.Trajectory = f.Trajectory
	s.status.State = player.StateRunning.String()
	s.status.Frames = f.Seq + 1
	s.status.T = f.T
	s.mu.Unlock()

	if f.Seq%s.decimation == 0 {
		s.frameHub.BroadcastJSON(f)
	}
	return nil
}

// OnStep records a finished play. Assign it to gesture.Sequence.OnStep.
func (s *Server) OnStep(e gesture.StepEvent) {
	r := e.Result
	sum := &StepSummary{
		Trajectory:  r.Trajectory,
		Iteration:   e.Iteration,
		State:       r.State.String(),
		Frames:      r.Frames,
		LastT:       r.LastT,
		ElapsedMs:   r.Elapsed.Milliseconds(),
		MaxJitterUs: r.Stats.MaxJitter.Microseconds(),
		Overruns:    r.Stats.Overruns,
	}
	if r.Err != nil {
		sum.Error = r.Err.Error()
	}

	s.mu.Lock()
	s.status.RunID = e.RunID
	s.status.State = sum.State
	s.status.Last = sum
	s.mu.Unlock()

	s.broadcastPlayback(protocol.PlaybackData{
		RunID:      e.RunID,
		Trajectory: r.Trajectory,
		State:      sum.State,
		Frames:     r.Frames,
		T:          r.LastT,
		Error:      sum.Error,
	})
}

// Confirmer returns a gesture.Confirmer answered through POST /api/confirm.
func (s *Server) Confirmer() gesture.Confirmer { return s.confirm }

// Status returns a snapshot of the dashboard status.
func (s *Server) Status() Status {
	s.mu.RLock()
	st := s.status
	r := s.readiness
	s.mu.RUnlock()

	if r != nil {
		st.Controller = r.Status().String()
	}
	st.Prompt = s.confirm.pendingPrompt()
	return st
}

func (s *Server) broadcastPlayback(p protocol.PlaybackData) {
	msg, err := protocol.NewPlaybackMessage(p)
	if err != nil {
		s.logger.Warn("encode playback message", "error", err)
		return
	}
	s.statusHub.BroadcastJSON(msg)
}
