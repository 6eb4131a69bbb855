package controller

import (
	"context"

	"go.uber.org/multierr"

	"github.com/teslashibe/go-dreamer/pkg/player"
)

// FanOut is a Sink that delivers each frame to every sink in order.
// A failing sink does not stop delivery to the rest; all errors are combined.
type FanOut []player.Sink

// NewFanOut drops nil sinks.
func NewFanOut(sinks ...player.Sink) FanOut {
	out := make(FanOut, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Send delivers f to all sinks.
func (fo FanOut) Send(ctx context.Context, f player.Frame) error {
	var err error
	for _, s := range fo {
		err = multierr.Append(err, s.Send(ctx, f))
	}
	return err
}
