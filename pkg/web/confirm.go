package web

import (
	"context"
	"errors"
	"sync"

	"github.com/teslashibe/go-dreamer/pkg/protocol"
)

// ErrNoPendingPrompt is returned when an answer arrives with nothing to confirm.
var ErrNoPendingPrompt = errors.New("no confirmation pending")

// webConfirmer parks a prompt until the dashboard answers it.
type webConfirmer struct {
	s *Server

	mu      sync.Mutex
	prompt  string
	answers chan bool
}

func newWebConfirmer(s *Server) *webConfirmer {
	return &webConfirmer{s: s}
}

func (w *webConfirmer) ConfirmContinue(ctx context.Context, prompt string) (bool, error) {
	ch := make(chan bool, 1)
	w.mu.Lock()
	w.prompt = prompt
	w.answers = ch
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.answers == ch {
			w.prompt, w.answers = "", nil
		}
		w.mu.Unlock()
	}()

	w.s.logger.Info("waiting for confirmation", "prompt", prompt)
	w.s.broadcastPlayback(protocol.PlaybackData{State: "waiting", Prompt: prompt})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case ok := <-ch:
		return ok, nil
	}
}

func (w *webConfirmer) answer(ok bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.answers == nil {
		return ErrNoPendingPrompt
	}
	w.answers <- ok
	w.prompt, w.answers = "", nil
	return nil
}

func (w *webConfirmer) pendingPrompt() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prompt
}
