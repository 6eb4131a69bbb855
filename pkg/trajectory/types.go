// Package trajectory holds timed waypoint trajectories for the Dreamer upper body
// and the spline interpolators that turn them into continuous reference signals.
//
// A Trajectory carries five parallel channels: right and left hand Cartesian
// position, right and left hand orientation, and the 16-joint posture. Each
// channel is parametrized uniformly over the trajectory duration by the order in
// which its waypoints were added.
package trajectory

import "fmt"

// Vector sizes per channel.
const (
	CartesianDim   = 3
	OrientationDim = 3

	// PostureDOF is the number of controlled joints: torso lower and upper
	// pitch, then seven left arm joints, then seven right arm joints.
	PostureDOF = 16
)

// Channel identifies one of the parallel motion channels.
type Channel int

const (
	RightHandPosition Channel = iota
	RightHandOrientation
	LeftHandPosition
	LeftHandOrientation
	Posture

	// NumChannels is the number of channels in every trajectory.
	NumChannels = 5
)

// Channels lists every channel in canonical order.
var Channels = [NumChannels]Channel{
	RightHandPosition,
	RightHandOrientation,
	LeftHandPosition,
	LeftHandOrientation,
	Posture,
}

var channelKeys = [NumChannels]string{
	"rh_position",
	"rh_orientation",
	"lh_position",
	"lh_orientation",
	"posture",
}

// String returns the stable key used in logs, gesture files and the wire format.
func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelKeys[c]
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c >= 0 && int(c) < NumChannels
}

// Dim returns the expected vector length for the channel, or 0 if unknown.
func (c Channel) Dim() int {
	switch c {
	case RightHandPosition, LeftHandPosition:
		return CartesianDim
	case RightHandOrientation, LeftHandOrientation:
		return OrientationDim
	case Posture:
		return PostureDOF
	default:
		return 0
	}
}

// ParseChannel is the inverse of Channel.String.
func ParseChannel(key string) (Channel, error) {
	for i, k := range channelKeys {
		if k == key {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, key)
}

// Waypoint is one sample of a channel. Orientation waypoints are an
// unconstrained 3-vector and are never normalized here.
type Waypoint []float64

// Clone returns a copy that shares no storage with w.
func (w Waypoint) Clone() Waypoint {
	if w == nil {
		return nil
	}
	out := make(Waypoint, len(w))
	copy(out, w)
	return out
}

// Equal reports whether both waypoints have the same length and values.
func (w Waypoint) Equal(o Waypoint) bool {
	if len(w) != len(o) {
		return false
	}
	for i := range w {
		if w[i] != o[i] {
			return false
		}
	}
	return true
}
