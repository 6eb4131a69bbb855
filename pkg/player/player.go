package player

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/teslashibe/go-dreamer/internal/log"
	"github.com/teslashibe/go-dreamer/pkg/trajectory"
)

const (
	// DefaultRate matches the 1 kHz servo clock of the whole-body controller.
	DefaultRate = 1000.0

	// MaxRate gives a one microsecond tick, the finest the loop can express.
	MaxRate = 1e6
)

// ValidateRate rejects tick rates the loop cannot run at.
func ValidateRate(hz float64) error {
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 || hz > MaxRate {
		return fmt.Errorf("%w: %v Hz (want 0 < rate <= %g)", ErrInvalidRate, hz, MaxRate)
	}
	return nil
}

// Options configures a Player.
type Options struct {
	// Rate is the control tick rate in Hz.
	Rate float64

	// Clock drives the loop. Tests pass clock.NewMock().
	Clock clock.Clock

	// Logger receives lifecycle events. Nothing is logged per tick.
	Logger *slog.Logger
}

// DefaultOptions returns a 1 kHz player on the wall clock.
func DefaultOptions() Options {
	return Options{
		Rate:  DefaultRate,
		Clock: clock.New(),
	}
}

// Player streams one trajectory at a time to a Sink.
// It is safe to query its state from other goroutines while Play runs.
type Player struct {
	sink   Sink
	ready  Readiness
	rate   float64
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.RWMutex
	state   State
	current string
	last    Result

	cancelled atomic.Bool
	frames    atomic.Uint64
}

// New creates a player. A nil ready means the controller is never polled.
// A zero rate means DefaultRate; a rate ValidateRate rejects makes every Play
// fail with ErrInvalidRate.
func New(sink Sink, ready Readiness, opts Options) *Player {
	if ready == nil {
		ready = AlwaysReady
	}
	if opts.Rate <= 0 {
		opts.Rate = DefaultRate
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.For("player")
	}
	return &Player{
		sink:   sink,
		ready:  ready,
		rate:   opts.Rate,
		clock:  opts.Clock,
		logger: opts.Logger,
		state:  StateIdle,
	}
}

// Period returns the control tick period.
func (p *Player) Period() time.Duration {
	return time.Duration(float64(time.Second) / p.rate)
}

// Play streams traj until its duration elapses or an abort condition is seen.
// It blocks for the duration of the trajectory and never panics on playback
// errors; the outcome is reported in the Result. Frames already sent before
// an abort are not rolled back.
func (p *Player) Play(ctx context.Context, traj *trajectory.Trajectory) Result {
	if traj == nil {
		return Result{State: StateAborted, Err: ErrNoTrajectory}
	}
	if err := ValidateRate(p.rate); err != nil {
		return Result{Trajectory: traj.Name(), State: StateAborted, Err: err}
	}

	p.mu.Lock()
	if p.state == StateRunning {
		current := p.current
		p.mu.Unlock()
		return Result{
			Trajectory: traj.Name(),
			State:      StateAborted,
			Err:        fmt.Errorf("%w: %q", ErrAlreadyPlaying, current),
		}
	}
	p.state = StateRunning
	p.current = traj.Name()
	p.cancelled.Store(false)
	p.frames.Store(0)
	p.mu.Unlock()

	p.logger.Info("playing trajectory",
		"trajectory", traj.Name(),
		"duration", traj.Duration(),
		"rate_hz", p.rate)

	res := p.run(ctx, traj)

	p.mu.Lock()
	p.state = res.State
	p.last = res
	p.mu.Unlock()

	if res.OK() {
		p.logger.Info("trajectory completed",
			"trajectory", res.Trajectory,
			"frames", res.Frames,
			"elapsed", res.Elapsed,
			"max_jitter", res.Stats.MaxJitter,
			"overruns", res.Stats.Overruns)
	} else {
		p.logger.Warn("trajectory aborted",
			"trajectory", res.Trajectory,
			"frames", res.Frames,
			"last_t", res.LastT,
			"error", res.Err)
	}
	return res
}

func (p *Player) run(ctx context.Context, traj *trajectory.Trajectory) Result {
	res := Result{Trajectory: traj.Name(), State: StateRunning}

	bundle, err := trajectory.NewBundle(traj)
	if err != nil {
		res.State, res.Err = StateAborted, err
		return res
	}

	// The controller must be ready before the first frame.
	if err := p.check(ctx); err != nil {
		res.State, res.Err = StateAborted, err
		return res
	}

	period := p.Period()
	duration := bundle.Duration()
	ticks := newTickRecorder(period)

	start := p.clock.Now()
	ticker := p.clock.Ticker(period)
	defer ticker.Stop()

	finish := func(state State, err error) Result {
		res.State, res.Err = state, err
		res.Elapsed = p.clock.Since(start)
		res.Stats = ticks.stats()
		return res
	}

	emit := func(t float64) error {
		f := NewFrame(bundle.Name(), res.Frames, t, bundle.SampleAll(t))
		if err := p.sink.Send(ctx, f); err != nil {
			return fmt.Errorf("%w: frame %d at t=%.4f: %w", ErrSinkFailed, res.Frames, t, err)
		}
		res.Frames++
		res.LastT = t
		p.frames.Store(res.Frames)
		return nil
	}

	if err := emit(0); err != nil {
		return finish(StateAborted, err)
	}

	lastTick := start
	for {
		select {
		case <-ctx.Done():
			return finish(StateAborted, ctx.Err())

		case <-ticker.C:
			now := p.clock.Now()
			ticks.add(now.Sub(lastTick).Seconds())
			lastTick = now

			t := now.Sub(start).Seconds()
			final := t >= duration
			if final {
				t = duration
			}
			// Frames must move forward in time.
			if t <= res.LastT {
				continue
			}

			if err := p.check(ctx); err != nil {
				return finish(StateAborted, err)
			}
			if err := emit(t); err != nil {
				return finish(StateAborted, err)
			}
			if final {
				return finish(StateCompleted, nil)
			}
		}
	}
}

// check runs the per-tick abort conditions.
func (p *Player) check(ctx context.Context) error {
	if p.cancelled.Load() {
		return ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s := p.ready.Status(); s != StatusReady {
		return fmt.Errorf("%w (status %s)", statusErr(s), s)
	}
	return nil
}

// Cancel aborts the play in progress at its next tick.
func (p *Player) Cancel() {
	p.cancelled.Store(true)
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Current returns the name of the trajectory being or last played.
func (p *Player) Current() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Last returns the result of the most recent finished play.
func (p *Player) Last() Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Frames returns how many frames the current or last play has emitted.
func (p *Player) Frames() uint64 {
	return p.frames.Load()
}
