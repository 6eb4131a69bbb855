package controller

import "errors"

var (
	// ErrHandshakeTimeout is returned when the controller never became ready.
	ErrHandshakeTimeout = errors.New("controller handshake timed out")

	// ErrClosed is returned when sending on a closed controller.
	ErrClosed = errors.New("controller connection closed")
)
