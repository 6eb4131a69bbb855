package trajectory

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func vecEquals(a, b Waypoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !floatEquals(a[i], b[i]) {
			return false
		}
	}
	return true
}

func posture(v float64) Waypoint {
	wp := make(Waypoint, PostureDOF)
	for i := range wp {
		wp[i] = v
	}
	return wp
}

// fill gives every channel of tr n waypoints whose values grow with the index.
func fill(t *testing.T, tr *Trajectory, n int, base float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		v := base + float64(i)
		for _, ch := range Channels {
			wp := make(Waypoint, ch.Dim())
			for d := range wp {
				wp[d] = v + 0.1*float64(d)
			}
			if err := tr.AddWaypoint(ch, wp); err != nil {
				t.Fatalf("AddWaypoint(%s) failed: %v", ch, err)
			}
		}
	}
}

func TestNew_InvalidDuration(t *testing.T) {
	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := New("bad", d); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("New(duration=%v): got %v, want ErrInvalidDuration", d, err)
		}
	}
}

func TestChannel_DimAndString(t *testing.T) {
	if RightHandPosition.Dim() != 3 || LeftHandOrientation.Dim() != 3 {
		t.Error("hand channels should be 3-dimensional")
	}
	if Posture.Dim() != 16 {
		t.Errorf("Posture.Dim: got %d, want 16", Posture.Dim())
	}
	for _, ch := range Channels {
		got, err := ParseChannel(ch.String())
		if err != nil || got != ch {
			t.Errorf("ParseChannel(%q): got %v, %v", ch.String(), got, err)
		}
	}
	if _, err := ParseChannel("tail"); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("ParseChannel(tail): got %v, want ErrUnknownChannel", err)
	}
}

func TestAddWaypoint_InvalidDimension(t *testing.T) {
	tr, _ := New("Wave", 5.0)

	err := tr.AddWaypoint(RightHandPosition, Waypoint{0.1, 0.2})
	if !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("got %v, want ErrInvalidDimension", err)
	}
	if tr.Len(RightHandPosition) != 0 {
		t.Error("rejected waypoint must not be stored")
	}

	if err := tr.AddWaypoint(Posture, Waypoint{1, 2, 3}); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("posture: got %v, want ErrInvalidDimension", err)
	}
	if err := tr.AddWaypoint(Channel(9), Waypoint{1, 2, 3}); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("unknown channel: got %v, want ErrUnknownChannel", err)
	}
}

func TestAddWaypoint_CopiesInput(t *testing.T) {
	tr, _ := New("copy", 1)
	wp := Waypoint{1, 2, 3}
	if err := tr.AddWaypoint(RightHandPosition, wp); err != nil {
		t.Fatal(err)
	}
	wp[0] = 99

	got, _ := tr.FinalWaypoint(RightHandPosition)
	if got[0] != 1 {
		t.Errorf("stored waypoint changed through caller slice: %v", got)
	}
	got[1] = 42
	again, _ := tr.FinalWaypoint(RightHandPosition)
	if again[1] != 2 {
		t.Errorf("stored waypoint changed through returned slice: %v", again)
	}
}

func TestSetInitialWaypoint_Prepends(t *testing.T) {
	tr, _ := New("GoToReady", 5)
	_ = tr.AddWaypoint(RightHandPosition, Waypoint{1, 1, 1})
	_ = tr.AddWaypoint(RightHandPosition, Waypoint{2, 2, 2})

	if err := tr.SetInitialWaypoint(RightHandPosition, Waypoint{0, 0, 0}); err != nil {
		t.Fatal(err)
	}

	wps := tr.Waypoints(RightHandPosition)
	if len(wps) != 3 {
		t.Fatalf("got %d waypoints, want 3", len(wps))
	}
	if !wps[0].Equal(Waypoint{0, 0, 0}) || !wps[1].Equal(Waypoint{1, 1, 1}) {
		t.Errorf("unexpected order: %v", wps)
	}
}

func TestFinalWaypoint_Empty(t *testing.T) {
	tr, _ := New("empty", 1)
	if _, err := tr.FinalWaypoint(Posture); !errors.Is(err, ErrEmptyChannel) {
		t.Errorf("got %v, want ErrEmptyChannel", err)
	}
}

func TestSetPredecessor_Continuity(t *testing.T) {
	a, _ := New("A", 2)
	fill(t, a, 3, 0)
	b, _ := New("B", 2)
	fill(t, b, 2, 10)

	if err := b.SetPredecessor(a); err != nil {
		t.Fatalf("SetPredecessor failed: %v", err)
	}

	for _, ch := range Channels {
		want, _ := a.FinalWaypoint(ch)
		got := b.Waypoints(ch)[0]
		if !got.Equal(want) {
			t.Errorf("%s: first waypoint %v, want %v", ch, got, want)
		}
		if b.Len(ch) != 3 {
			t.Errorf("%s: got %d waypoints, want 3", ch, b.Len(ch))
		}
	}
	if b.Predecessor() != a {
		t.Error("Predecessor not recorded")
	}
}

func TestSetPredecessor_SecondCallOverwrites(t *testing.T) {
	a, _ := New("A", 1)
	fill(t, a, 2, 0)
	c, _ := New("C", 1)
	fill(t, c, 2, 100)
	b, _ := New("B", 1)
	fill(t, b, 2, 10)

	if err := b.SetPredecessor(a); err != nil {
		t.Fatal(err)
	}
	if err := b.SetPredecessor(c); err != nil {
		t.Fatal(err)
	}

	for _, ch := range Channels {
		if b.Len(ch) != 3 {
			t.Errorf("%s: got %d waypoints, want 3 (no duplicate anchor)", ch, b.Len(ch))
		}
		want, _ := c.FinalWaypoint(ch)
		if got := b.Waypoints(ch)[0]; !got.Equal(want) {
			t.Errorf("%s: anchor %v, want %v from second predecessor", ch, got, want)
		}
	}
	if b.Predecessor() != c {
		t.Error("Predecessor should be the second trajectory")
	}
}

func TestSetPredecessor_EmptyLeavesReceiverUntouched(t *testing.T) {
	a, _ := New("A", 1)
	_ = a.AddWaypoint(RightHandPosition, Waypoint{1, 2, 3}) // other channels empty

	b, _ := New("B", 1)
	fill(t, b, 2, 0)

	err := b.SetPredecessor(a)
	if !errors.Is(err, ErrEmptyChannel) {
		t.Fatalf("got %v, want ErrEmptyChannel", err)
	}
	for _, ch := range Channels {
		if b.Len(ch) != 2 {
			t.Errorf("%s: receiver modified by failed SetPredecessor", ch)
		}
	}
	if b.Predecessor() != nil {
		t.Error("failed SetPredecessor must not record a predecessor")
	}
}

func TestHold(t *testing.T) {
	a, _ := New("A", 1)
	fill(t, a, 2, 0)
	b, _ := New("B", 1)

	if err := b.Hold(LeftHandPosition, a, 4); err != nil {
		t.Fatal(err)
	}
	want, _ := a.FinalWaypoint(LeftHandPosition)
	wps := b.Waypoints(LeftHandPosition)
	if len(wps) != 4 {
		t.Fatalf("got %d waypoints, want 4", len(wps))
	}
	for i, wp := range wps {
		if !wp.Equal(want) {
			t.Errorf("waypoint %d: %v, want %v", i, wp, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tr, _ := New("short", 1)
	fill(t, tr, 1, 0)
	if err := tr.Validate(); !errors.Is(err, ErrInsufficientWaypoints) {
		t.Errorf("got %v, want ErrInsufficientWaypoints", err)
	}

	fill(t, tr, 1, 1)
	if err := tr.Validate(); err != nil {
		t.Errorf("two waypoints per channel should validate: %v", err)
	}
}

func TestString(t *testing.T) {
	a, _ := New("GoToReady", 5)
	fill(t, a, 2, 0)
	b, _ := New("Wave", 5)
	fill(t, b, 2, 0)
	_ = b.SetPredecessor(a)

	s := b.String()
	for _, want := range []string{"name: Wave", "duration: 5", "after: GoToReady", "posture way points (3)"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}
