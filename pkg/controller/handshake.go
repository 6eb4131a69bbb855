package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/teslashibe/go-dreamer/internal/log"
	"github.com/teslashibe/go-dreamer/pkg/player"
	"github.com/teslashibe/go-dreamer/pkg/trajectory"
)

const handshakeInterval = 50 * time.Millisecond

// poller is implemented by controllers whose status must be fetched.
type poller interface {
	Poll(ctx context.Context) (player.ControllerStatus, error)
}

// Handshake holds the robot at posture until the controller reports ready.
// It resends the hold frame while waiting, so a controller that just came up
// has a reference to track. A fault ends the handshake at once.
func Handshake(ctx context.Context, c Controller, posture trajectory.Waypoint, timeout time.Duration) error {
	if len(posture) != trajectory.PostureDOF {
		return fmt.Errorf("%w: posture has %d values, want %d",
			trajectory.ErrInvalidDimension, len(posture), trajectory.PostureDOF)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := log.For("controller")
	hold := HoldFrame(posture)
	ticker := time.NewTicker(handshakeInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		if err := c.Send(ctx, hold); err != nil {
			logger.Debug("hold frame not accepted", "attempt", attempt, "error", err)
		}
		if p, ok := c.(poller); ok {
			p.Poll(ctx)
		}

		switch s := c.Status(); s {
		case player.StatusReady:
			logger.Info("controller ready", "attempts", attempt)
			return nil
		case player.StatusFault:
			return fmt.Errorf("handshake: %w", player.ErrControllerFault)
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("%w after %v", ErrHandshakeTimeout, timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
