package trajectory

import "errors"

var (
	// ErrInvalidDimension is returned when a waypoint length does not match its channel.
	ErrInvalidDimension = errors.New("invalid waypoint dimension")

	// ErrEmptyChannel is returned when reading the final waypoint of an empty channel.
	ErrEmptyChannel = errors.New("channel has no waypoints")

	// ErrInsufficientWaypoints is returned when a channel has fewer than two
	// waypoints at playback time.
	ErrInsufficientWaypoints = errors.New("channel needs at least two waypoints")

	// ErrInvalidDuration is returned for a non-positive or non-finite duration.
	ErrInvalidDuration = errors.New("trajectory duration must be positive")

	// ErrUnknownChannel is returned for a channel outside the known set.
	ErrUnknownChannel = errors.New("unknown channel")
)
