package controller

import (
	"github.com/teslashibe/go-dreamer/pkg/player"
	"github.com/teslashibe/go-dreamer/pkg/protocol"
	"github.com/teslashibe/go-dreamer/pkg/trajectory"
)

// DefaultPosture holds the shoulder abductors and elbows at about 10 degrees.
// Order: torso (2), left arm (7), right arm (7).
var DefaultPosture = trajectory.Waypoint{
	0.0, 0.0,
	0.0, 0.174532925, 0.0, 0.174532925, 0.0, 0.0, 0.0,
	0.0, 0.174532925, 0.0, 0.174532925, 0.0, 0.0, 0.0,
}

// Home hand poses the controller starts from.
var (
	HomeRightHandPosition    = trajectory.Waypoint{0.033912978219317776, -0.29726881641499886, 0.82}
	HomeLeftHandPosition     = trajectory.Waypoint{0.033912978219317776, 0.29726881641499886, 0.82}
	HomeRightHandOrientation = trajectory.Waypoint{1.0, 0.0, 0.0}
	HomeLeftHandOrientation  = trajectory.Waypoint{1.0, 0.0, 0.0}
)

// HoldFrame returns a frame that keeps the hands at home and the joints at posture.
func HoldFrame(posture trajectory.Waypoint) player.Frame {
	var v [trajectory.NumChannels]trajectory.Waypoint
	v[trajectory.RightHandPosition] = HomeRightHandPosition.Clone()
	v[trajectory.RightHandOrientation] = HomeRightHandOrientation.Clone()
	v[trajectory.LeftHandPosition] = HomeLeftHandPosition.Clone()
	v[trajectory.LeftHandOrientation] = HomeLeftHandOrientation.Clone()
	v[trajectory.Posture] = posture.Clone()
	return player.NewFrame("hold", 0, 0, v)
}

// CommandFromFrame converts a player frame to its wire form.
func CommandFromFrame(f player.Frame) protocol.CommandData {
	return protocol.CommandData{
		Trajectory:           f.Trajectory,
		Seq:                  f.Seq,
		T:                    f.T,
		RightHandPosition:    f.RightHandPosition,
		RightHandOrientation: f.RightHandOrientation,
		LeftHandPosition:     f.LeftHandPosition,
		LeftHandOrientation:  f.LeftHandOrientation,
		Posture:              f.Posture,
	}
}
