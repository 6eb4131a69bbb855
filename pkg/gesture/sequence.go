package gesture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/teslashibe/go-dreamer/internal/log"
	"github.com/teslashibe/go-dreamer/pkg/player"
)

// ErrStepFailed is returned when a trajectory of the sequence did not complete.
var ErrStepFailed = errors.New("gesture step failed")

const (
	defaultStartPrompt  = "Start demo?"
	defaultRepeatPrompt = "Again?"
)

// StepEvent is reported after every play.
type StepEvent struct {
	RunID     string
	Index     int // step index in the gesture
	Iteration int // 1 for the first play of a step, more for repeats
	Result    player.Result
}

// Report summarizes one run.
type Report struct {
	RunID    string
	Declined bool // the operator said no at the start prompt
	Plays    []player.Result
}

// Sequence plays a gesture's steps in order on a single player.
type Sequence struct {
	gesture *Gesture
	player  *player.Player
	confirm Confirmer
	logger  *slog.Logger

	// OnStep, if set, is called after every play.
	OnStep func(StepEvent)

	mu    sync.RWMutex
	runID string
}

// NewSequence creates a sequence. A nil confirmer answers yes once.
func NewSequence(g *Gesture, p *player.Player, c Confirmer) *Sequence {
	if c == nil {
		c = AutoConfirm(1)
	}
	return &Sequence{
		gesture: g,
		player:  p,
		confirm: c,
		logger:  log.For("gesture").With("gesture", g.Name),
	}
}

// RunID returns the id of the current or last run.
func (s *Sequence) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Run asks to start, then plays every step. Steps marked repeat are played
// again while the confirmer says yes. The first failed play ends the run.
func (s *Sequence) Run(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: uuid.NewString()}
	s.mu.Lock()
	s.runID = rep.RunID
	s.mu.Unlock()

	logger := s.logger.With("run_id", rep.RunID)

	prompt := s.gesture.StartPrompt
	if prompt == "" {
		prompt = defaultStartPrompt
	}
	ok, err := s.confirm.ConfirmContinue(ctx, prompt)
	if err != nil {
		return rep, err
	}
	if !ok {
		logger.Info("run declined")
		rep.Declined = true
		return rep, nil
	}

	logger.Info("run started", "steps", len(s.gesture.Steps))
	for i, step := range s.gesture.Steps {
		for iter := 1; ; iter++ {
			res := s.player.Play(ctx, step.Trajectory)
			rep.Plays = append(rep.Plays, res)
			if s.OnStep != nil {
				s.OnStep(StepEvent{RunID: rep.RunID, Index: i, Iteration: iter, Result: res})
			}
			if !res.OK() {
				return rep, fmt.Errorf("%w: %s: %w", ErrStepFailed, step.Trajectory.Name(), res.Err)
			}
			if !step.Repeat {
				break
			}

			prompt := step.Prompt
			if prompt == "" {
				prompt = defaultRepeatPrompt
			}
			again, err := s.confirm.ConfirmContinue(ctx, prompt)
			if err != nil {
				return rep, err
			}
			if !again {
				break
			}
		}
	}
	logger.Info("run finished", "plays", len(rep.Plays))
	return rep, nil
}
