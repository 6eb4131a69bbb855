// Package controller connects the trajectory player to the whole-body
// controller.
//
// A controller is both the player's command Sink and its Readiness source.
// Transports are HTTP (commands POSTed, status polled) and WebSocket (commands
// written, status pushed by the controller).
package controller

import "github.com/teslashibe/go-dreamer/pkg/player"

// Controller is a command sink that also reports its own readiness.
type Controller interface {
	player.Sink
	player.Readiness
	Close() error
}

var (
	_ Controller = (*HTTPController)(nil)
	_ Controller = (*WSController)(nil)
)
