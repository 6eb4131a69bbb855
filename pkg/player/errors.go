package player

import "errors"

var (
	// ErrControllerNotReady is returned when the controller reports not ready.
	ErrControllerNotReady = errors.New("controller not ready")

	// ErrControllerFault is returned when the controller reports a fault.
	ErrControllerFault = errors.New("controller fault")

	// ErrCancelled is returned when Cancel was called during playback.
	ErrCancelled = errors.New("playback cancelled")

	// ErrSinkFailed is returned when a frame could not be delivered.
	ErrSinkFailed = errors.New("command sink failed")

	// ErrAlreadyPlaying is returned when Play is called while another play runs.
	ErrAlreadyPlaying = errors.New("trajectory already playing")

	// ErrNoTrajectory is returned when Play is given a nil trajectory.
	ErrNoTrajectory = errors.New("no trajectory to play")

	// ErrInvalidRate is returned for a tick rate outside (0, MaxRate].
	ErrInvalidRate = errors.New("invalid tick rate")
)

func statusErr(s ControllerStatus) error {
	switch s {
	case StatusReady:
		return nil
	case StatusFault:
		return ErrControllerFault
	default:
		return ErrControllerNotReady
	}
}
