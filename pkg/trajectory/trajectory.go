package trajectory

import (
	"fmt"
	"math"
	"strings"
)

// Trajectory is a named, timed set of waypoint sequences, one per channel.
//
// A Trajectory is built once and then handed to a player. The player assumes
// it is not modified while playing; this is not enforced.
type Trajectory struct {
	name     string
	duration float64 // seconds

	waypoints [NumChannels][]Waypoint

	predecessor *Trajectory
	prevSet     bool
}

// New creates an empty trajectory. The duration is in seconds.
func New(name string, duration float64) (*Trajectory, error) {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w: %q has duration %v", ErrInvalidDuration, name, duration)
	}
	return &Trajectory{name: name, duration: duration}, nil
}

// Name returns the trajectory identifier.
func (t *Trajectory) Name() string { return t.name }

// Duration returns the playback time in seconds.
func (t *Trajectory) Duration() float64 { return t.duration }

// Predecessor returns the trajectory this one was chained to, or nil.
func (t *Trajectory) Predecessor() *Trajectory { return t.predecessor }

// Len returns the number of waypoints in a channel.
func (t *Trajectory) Len(ch Channel) int {
	if !ch.Valid() {
		return 0
	}
	return len(t.waypoints[ch])
}

// Waypoints returns a copy of a channel's waypoints in order.
func (t *Trajectory) Waypoints(ch Channel) []Waypoint {
	if !ch.Valid() {
		return nil
	}
	out := make([]Waypoint, len(t.waypoints[ch]))
	for i, wp := range t.waypoints[ch] {
		out[i] = wp.Clone()
	}
	return out
}

// AddWaypoint appends a waypoint to the end of a channel.
func (t *Trajectory) AddWaypoint(ch Channel, wp Waypoint) error {
	if err := checkDim(ch, wp); err != nil {
		return err
	}
	t.waypoints[ch] = append(t.waypoints[ch], wp.Clone())
	return nil
}

// SetInitialWaypoint inserts a waypoint at the start of a channel, shifting the
// existing entries. It fixes the starting pose of a trajectory that has no
// predecessor.
func (t *Trajectory) SetInitialWaypoint(ch Channel, wp Waypoint) error {
	if err := checkDim(ch, wp); err != nil {
		return err
	}
	t.waypoints[ch] = append([]Waypoint{wp.Clone()}, t.waypoints[ch]...)
	return nil
}

// SetPredecessor makes this trajectory start where prev ends.
//
// The first call prepends prev's final waypoint to every channel. Later calls
// overwrite position 0 instead, so the anchor is inserted exactly once. If any
// channel of prev is empty nothing is modified.
func (t *Trajectory) SetPredecessor(prev *Trajectory) error {
	if prev == nil {
		return fmt.Errorf("%q: nil predecessor", t.name)
	}

	var finals [NumChannels]Waypoint
	for _, ch := range Channels {
		wp, err := prev.FinalWaypoint(ch)
		if err != nil {
			return fmt.Errorf("predecessor %q: %w", prev.name, err)
		}
		finals[ch] = wp
	}

	for _, ch := range Channels {
		if t.prevSet && len(t.waypoints[ch]) > 0 {
			t.waypoints[ch][0] = finals[ch]
		} else {
			t.waypoints[ch] = append([]Waypoint{finals[ch]}, t.waypoints[ch]...)
		}
	}
	t.predecessor = prev
	t.prevSet = true
	return nil
}

// FinalWaypoint returns a copy of the last waypoint of a channel.
func (t *Trajectory) FinalWaypoint(ch Channel) (Waypoint, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, int(ch))
	}
	wps := t.waypoints[ch]
	if len(wps) == 0 {
		return nil, fmt.Errorf("%w: %s of %q", ErrEmptyChannel, ch, t.name)
	}
	return wps[len(wps)-1].Clone(), nil
}

// Hold appends prev's final waypoint to a channel n times, keeping that
// channel still while the others move.
func (t *Trajectory) Hold(ch Channel, prev *Trajectory, n int) error {
	if prev == nil {
		return fmt.Errorf("%q: nil trajectory to hold", t.name)
	}
	wp, err := prev.FinalWaypoint(ch)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		t.waypoints[ch] = append(t.waypoints[ch], wp.Clone())
	}
	return nil
}

// Validate checks that every channel is playable.
func (t *Trajectory) Validate() error {
	for _, ch := range Channels {
		if n := len(t.waypoints[ch]); n < 2 {
			return fmt.Errorf("%w: %s of %q has %d", ErrInsufficientWaypoints, ch, t.name, n)
		}
	}
	return nil
}

// String dumps the trajectory for diagnostics.
func (t *Trajectory) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  - name: %s\n", t.name)
	fmt.Fprintf(&b, "  - duration: %g\n", t.duration)
	if t.predecessor != nil {
		fmt.Fprintf(&b, "  - after: %s\n", t.predecessor.name)
	}
	for i, ch := range Channels {
		fmt.Fprintf(&b, "  - %s way points (%d):\n        %v", ch, len(t.waypoints[ch]), t.waypoints[ch])
		if i < NumChannels-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func checkDim(ch Channel, wp Waypoint) error {
	if !ch.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, int(ch))
	}
	if len(wp) != ch.Dim() {
		return fmt.Errorf("%w: %s wants %d values, got %d", ErrInvalidDimension, ch, ch.Dim(), len(wp))
	}
	return nil
}
