// Package player streams trajectories to the robot controller at a fixed rate.
//
// A Player samples every channel of a trajectory at the same instant on each
// control tick and hands the resulting Frame to a Sink. Before the first frame
// and on every tick it polls a Readiness source; a controller that is not ready
// or reports a fault aborts the play immediately.
package player

import (
	"context"
	"time"

	"github.com/teslashibe/go-dreamer/pkg/trajectory"
)

// State is the playback state of a Player.
type State int

const (
	// StateIdle means nothing has been played yet.
	StateIdle State = iota

	// StateRunning means a trajectory is streaming.
	StateRunning

	// StateCompleted means the last trajectory ran for its full duration.
	StateCompleted

	// StateAborted means the last trajectory stopped early.
	StateAborted
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Frame is one synchronized command: every channel sampled at time T.
type Frame struct {
	Trajectory string  `json:"trajectory"`
	Seq        uint64  `json:"seq"`
	T          float64 `json:"t"` // seconds since the trajectory started

	RightHandPosition    []float64 `json:"rh_position"`
	RightHandOrientation []float64 `json:"rh_orientation"`
	LeftHandPosition     []float64 `json:"lh_position"`
	LeftHandOrientation  []float64 `json:"lh_orientation"`
	Posture              []float64 `json:"posture"`
}

// Value returns the vector for a channel.
func (f Frame) Value(ch trajectory.Channel) []float64 {
	switch ch {
	case trajectory.RightHandPosition:
		return f.RightHandPosition
	case trajectory.RightHandOrientation:
		return f.RightHandOrientation
	case trajectory.LeftHandPosition:
		return f.LeftHandPosition
	case trajectory.LeftHandOrientation:
		return f.LeftHandOrientation
	case trajectory.Posture:
		return f.Posture
	default:
		return nil
	}
}

// NewFrame assembles a frame from per-channel samples.
func NewFrame(name string, seq uint64, t float64, v [trajectory.NumChannels]trajectory.Waypoint) Frame {
	return Frame{
		Trajectory:           name,
		Seq:                  seq,
		T:                    t,
		RightHandPosition:    v[trajectory.RightHandPosition],
		RightHandOrientation: v[trajectory.RightHandOrientation],
		LeftHandPosition:     v[trajectory.LeftHandPosition],
		LeftHandOrientation:  v[trajectory.LeftHandOrientation],
		Posture:              v[trajectory.Posture],
	}
}

// Sink receives command frames, one per tick.
type Sink interface {
	Send(ctx context.Context, f Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, f Frame) error

// Send calls fn.
func (fn SinkFunc) Send(ctx context.Context, f Frame) error { return fn(ctx, f) }

// ControllerStatus is what the controller reports about itself.
type ControllerStatus int

const (
	StatusReady ControllerStatus = iota
	StatusNotReady
	StatusFault
)

// String returns the wire name of the status.
func (s ControllerStatus) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusNotReady:
		return "not_ready"
	case StatusFault:
		return "fault"
	default:
		return "unknown"
	}
}

// ParseControllerStatus maps a wire name back to a status. Unknown names are
// treated as not ready.
func ParseControllerStatus(s string) ControllerStatus {
	switch s {
	case "ready":
		return StatusReady
	case "fault":
		return StatusFault
	default:
		return StatusNotReady
	}
}

// Readiness is polled by the player before and during playback. It must be
// cheap and must not block.
type Readiness interface {
	Status() ControllerStatus
}

// ReadinessFunc adapts a function to Readiness.
type ReadinessFunc func() ControllerStatus

// Status calls fn.
func (fn ReadinessFunc) Status() ControllerStatus { return fn() }

// AlwaysReady is a Readiness that never objects. Useful for dry runs.
var AlwaysReady Readiness = ReadinessFunc(func() ControllerStatus { return StatusReady })

// Result is the outcome of one Play call.
type Result struct {
	Trajectory string
	State      State
	Frames     uint64
	LastT      float64 // time of the last emitted frame, seconds
	Elapsed    time.Duration
	Err        error
	Stats      TickStats
}

// OK reports whether the trajectory ran to completion.
func (r Result) OK() bool {
	return r.State == StateCompleted && r.Err == nil
}
