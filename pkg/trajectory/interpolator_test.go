package trajectory

import (
	"errors"
	"math"
	"testing"
)

// waveRightHand is the right hand Cartesian path of the reference wave.
var waveRightHand = []Waypoint{
	{0.36485155544112036, -0.2517840242514848, 1.3112985442583098},
	{0.34112607633989245, -0.3058363428211823, 1.3153096901049126},
	{0.3189402691299889, -0.3648415066801503, 1.2686035469564463},
	{0.27834518368887395, -0.40498666141553075, 1.2197560223120059},
	{0.2894866074052446, -0.37589494706165555, 1.277789646796522},
	{0.3054862120250459, -0.3109708763630136, 1.307510639671462},
	{0.31592102945392736, -0.26786592118202396, 1.315217874025364},
	{0.31873722293582485, -0.22050165190244836, 1.3077860592406567},
	{0.3140206375491238, -0.1808165328946215, 1.2927024975528303},
	{0.3173188478462051, -0.15584603682048545, 1.2703563812275773},
	{0.329389782035803, -0.20211525876502226, 1.2871299455725096},
	{0.32994847638345126, -0.2257724457825943, 1.282110810745384},
}

func TestInterpolator_WaveEndpointsExact(t *testing.T) {
	tr, err := New("Wave", 5.0)
	if err != nil {
		t.Fatal(err)
	}
	for _, wp := range waveRightHand {
		if err := tr.AddWaypoint(RightHandPosition, wp); err != nil {
			t.Fatal(err)
		}
	}

	ip, err := NewInterpolator(RightHandPosition, tr.Waypoints(RightHandPosition), tr.Duration())
	if err != nil {
		t.Fatalf("NewInterpolator failed: %v", err)
	}

	if got := ip.Sample(0); !got.Equal(waveRightHand[0]) {
		t.Errorf("Sample(0): got %v, want %v", got, waveRightHand[0])
	}
	last := waveRightHand[len(waveRightHand)-1]
	if got := ip.Sample(5.0); !got.Equal(last) {
		t.Errorf("Sample(5): got %v, want %v", got, last)
	}
}

func TestInterpolator_PassesThroughAnchors(t *testing.T) {
	ip, err := NewInterpolator(RightHandPosition, waveRightHand, 5.0)
	if err != nil {
		t.Fatal(err)
	}
	anchors := Anchors(len(waveRightHand), 5.0)
	for i, x := range anchors {
		if got := ip.Sample(x); !vecEquals(got, waveRightHand[i]) {
			t.Errorf("anchor %d (t=%.4f): got %v, want %v", i, x, got, waveRightHand[i])
		}
	}
}

func TestInterpolator_Clamps(t *testing.T) {
	wps := []Waypoint{{0, 0, 0}, {1, 2, 3}, {2, 0, -1}}
	ip, err := NewInterpolator(LeftHandPosition, wps, 2.0)
	if err != nil {
		t.Fatal(err)
	}

	if got := ip.Sample(-3); !got.Equal(wps[0]) {
		t.Errorf("Sample(-3): got %v, want first waypoint", got)
	}
	if got := ip.Sample(math.NaN()); !got.Equal(wps[0]) {
		t.Errorf("Sample(NaN): got %v, want first waypoint", got)
	}
	if got := ip.Sample(10); !got.Equal(wps[2]) {
		t.Errorf("Sample(10): got %v, want last waypoint", got)
	}
}

func TestInterpolator_TwoPointsIsLine(t *testing.T) {
	wps := []Waypoint{{0, 0, 0}, {1, -2, 4}}
	ip, err := NewInterpolator(RightHandOrientation, wps, 4.0)
	if err != nil {
		t.Fatalf("two-point fit must not fail: %v", err)
	}

	mid := ip.Sample(2.0)
	want := Waypoint{0.5, -1, 2}
	if !vecEquals(mid, want) {
		t.Errorf("Sample(2): got %v, want %v", mid, want)
	}
}

func TestInterpolator_OrientationNotNormalized(t *testing.T) {
	wps := []Waypoint{{2, 0, 0}, {4, 0, 0}, {6, 0, 0}}
	ip, _ := NewInterpolator(RightHandOrientation, wps, 1.0)

	got := ip.Sample(0.5)
	if !vecEquals(got, Waypoint{4, 0, 0}) {
		t.Errorf("orientation should be splined like position, got %v", got)
	}
}

func TestInterpolator_Smooth(t *testing.T) {
	ip, err := NewInterpolator(RightHandPosition, waveRightHand, 5.0)
	if err != nil {
		t.Fatal(err)
	}

	// Neighbouring samples of a C2 spline move by a bounded amount.
	const dt = 1e-3
	prev := ip.Sample(0)
	for x := dt; x <= 5.0; x += dt {
		cur := ip.Sample(x)
		for d := range cur {
			if math.Abs(cur[d]-prev[d]) > 0.01 {
				t.Fatalf("jump of %v in dimension %d at t=%.3f", cur[d]-prev[d], d, x)
			}
		}
		prev = cur
	}
}

func TestNewInterpolator_Errors(t *testing.T) {
	if _, err := NewInterpolator(Posture, []Waypoint{posture(0)}, 1); !errors.Is(err, ErrInsufficientWaypoints) {
		t.Errorf("one waypoint: got %v, want ErrInsufficientWaypoints", err)
	}
	ragged := []Waypoint{{0, 0, 0}, {1, 1}}
	if _, err := NewInterpolator(RightHandPosition, ragged, 1); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("ragged: got %v, want ErrInvalidDimension", err)
	}
	if _, err := NewInterpolator(RightHandPosition, waveRightHand, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("zero duration: got %v, want ErrInvalidDuration", err)
	}
}

func TestAnchors(t *testing.T) {
	xs := Anchors(5, 2.0)
	want := []float64{0, 0.5, 1.0, 1.5, 2.0}
	for i := range want {
		if !floatEquals(xs[i], want[i]) {
			t.Errorf("anchor %d: got %v, want %v", i, xs[i], want[i])
		}
	}
	if xs[4] != 2.0 {
		t.Error("last anchor must equal the duration exactly")
	}
}

func TestBundle_ChainedWave(t *testing.T) {
	ready, _ := New("GoToReady", 5.0)
	fill(t, ready, 3, 0)

	wave, _ := New("Wave", 5.0)
	for _, wp := range waveRightHand {
		_ = wave.AddWaypoint(RightHandPosition, wp)
	}
	for _, ch := range []Channel{RightHandOrientation, LeftHandPosition, LeftHandOrientation, Posture} {
		if err := wave.Hold(ch, ready, 2); err != nil {
			t.Fatal(err)
		}
	}
	if err := wave.SetPredecessor(ready); err != nil {
		t.Fatal(err)
	}

	b, err := NewBundle(wave)
	if err != nil {
		t.Fatalf("NewBundle failed: %v", err)
	}

	start := b.SampleAll(0)
	end := b.SampleAll(5.0)
	for _, ch := range Channels {
		want, _ := ready.FinalWaypoint(ch)
		if !start[ch].Equal(want) {
			t.Errorf("%s at t=0: got %v, want predecessor final %v", ch, start[ch], want)
		}
		final, _ := wave.FinalWaypoint(ch)
		if !end[ch].Equal(final) {
			t.Errorf("%s at t=duration: got %v, want %v", ch, end[ch], final)
		}
	}
	if !end[RightHandPosition].Equal(waveRightHand[len(waveRightHand)-1]) {
		t.Error("wave must end on its last listed coordinate")
	}
	if b.Interpolator(Posture).Dim() != PostureDOF {
		t.Errorf("posture interpolator dim: got %d", b.Interpolator(Posture).Dim())
	}
}

func TestNewBundle_Insufficient(t *testing.T) {
	tr, _ := New("bare", 1)
	fill(t, tr, 1, 0)
	if _, err := NewBundle(tr); !errors.Is(err, ErrInsufficientWaypoints) {
		t.Errorf("got %v, want ErrInsufficientWaypoints", err)
	}
}

func TestBundle_SampleAllMatchesChannels(t *testing.T) {
	tr, _ := New("Wave", 2)
	fill(t, tr, 4, 0)
	b, err := NewBundle(tr)
	if err != nil {
		t.Fatalf("NewBundle failed: %v", err)
	}

	for _, at := range []float64{0, 0.3, 1.1, 2} {
		all := b.SampleAll(at)
		for _, ch := range Channels {
			want := b.Interpolator(ch).Sample(at)
			if !vecEquals(all[ch], want) {
				t.Errorf("%s at t=%v: got %v, want %v", ch, at, all[ch], want)
			}
			if cap(all[ch]) != ch.Dim() {
				t.Errorf("%s: cap %d, want %d", ch, cap(all[ch]), ch.Dim())
			}
		}

		// Channels share a buffer; growing one must not touch the next.
		next := all[RightHandOrientation][0]
		_ = append(all[RightHandPosition], 99)
		if all[RightHandOrientation][0] != next {
			t.Errorf("append to rh_position overwrote rh_orientation at t=%v", at)
		}
	}

	first, second := b.SampleAll(1), b.SampleAll(1)
	first[Posture][0] = 42
	if second[Posture][0] == 42 {
		t.Error("SampleAll results must not share storage")
	}
}
