package trajectory

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Interpolator samples one channel of a trajectory at arbitrary times.
//
// Each dimension gets its own natural cubic spline through the waypoints,
// placed at uniformly spaced anchors 0, Δ, 2Δ, ..., duration with
// Δ = duration/(count-1). Samples outside [0, duration] are clamped.
type Interpolator struct {
	channel  Channel
	duration float64
	dims     []interp.Predictor
	first    Waypoint
	last     Waypoint
}

// NewInterpolator fits splines through a channel's waypoints.
func NewInterpolator(ch Channel, waypoints []Waypoint, duration float64) (*Interpolator, error) {
	if !(duration > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}
	n := len(waypoints)
	if n < 2 {
		return nil, fmt.Errorf("%w: %s has %d", ErrInsufficientWaypoints, ch, n)
	}
	dim := len(waypoints[0])
	for i, wp := range waypoints {
		if len(wp) != dim {
			return nil, fmt.Errorf("%w: %s waypoint %d has %d values, want %d",
				ErrInvalidDimension, ch, i, len(wp), dim)
		}
	}

	xs := Anchors(n, duration)
	ys := make([]float64, n)

	ip := &Interpolator{
		channel:  ch,
		duration: duration,
		dims:     make([]interp.Predictor, dim),
		first:    waypoints[0].Clone(),
		last:     waypoints[n-1].Clone(),
	}
	for d := 0; d < dim; d++ {
		for i, wp := range waypoints {
			ys[i] = wp[d]
		}
		p, err := fit(xs, ys)
		if err != nil {
			return nil, fmt.Errorf("%s dimension %d: %w", ch, d, err)
		}
		ip.dims[d] = p
	}
	return ip, nil
}

// fit picks the spline for the point count. Two points get a straight line,
// which is what a natural cubic through two points reduces to.
func fit(xs, ys []float64) (interp.Predictor, error) {
	var f interp.FittablePredictor
	if len(xs) == 2 {
		f = &interp.PiecewiseLinear{}
	} else {
		f = &interp.NaturalCubic{}
	}
	if err := f.Fit(xs, ys); err != nil {
		return nil, err
	}
	return f, nil
}

// Anchors returns n uniformly spaced times covering [0, duration]. The last
// anchor is exactly duration.
func Anchors(n int, duration float64) []float64 {
	xs := make([]float64, n)
	if n == 0 {
		return xs
	}
	if n == 1 {
		xs[0] = 0
		return xs
	}
	step := duration / float64(n-1)
	for i := range xs {
		xs[i] = float64(i) * step
	}
	xs[n-1] = duration
	return xs
}

// Channel returns the channel this interpolator serves.
func (ip *Interpolator) Channel() Channel { return ip.channel }

// Dim returns the vector length of every sample.
func (ip *Interpolator) Dim() int { return len(ip.dims) }

// Sample evaluates the channel at time t seconds.
func (ip *Interpolator) Sample(t float64) Waypoint {
	out := make(Waypoint, len(ip.dims))
	ip.SampleInto(t, out)
	return out
}

// SampleInto evaluates the channel at t into dst, which must have length Dim.
func (ip *Interpolator) SampleInto(t float64, dst Waypoint) {
	switch {
	case !(t > 0):
		// Also catches NaN.
		copy(dst, ip.first)
		return
	case t >= ip.duration:
		copy(dst, ip.last)
		return
	}
	for d, p := range ip.dims {
		dst[d] = p.Predict(t)
	}
}

// Bundle holds one interpolator per channel of a trajectory so that all
// channels can be sampled at the same instant.
type Bundle struct {
	name     string
	duration float64
	dims     int // total values across channels
	channels [NumChannels]*Interpolator
}

// NewBundle validates a trajectory and fits every channel.
func NewBundle(t *Trajectory) (*Bundle, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	b := &Bundle{name: t.name, duration: t.duration}
	for _, ch := range Channels {
		ip, err := NewInterpolator(ch, t.waypoints[ch], t.duration)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", t.name, err)
		}
		b.channels[ch] = ip
		b.dims += ip.Dim()
	}
	return b, nil
}

// Name returns the name of the trajectory the bundle was built from.
func (b *Bundle) Name() string { return b.name }

// Duration returns the trajectory duration in seconds.
func (b *Bundle) Duration() float64 { return b.duration }

// Interpolator returns the interpolator for one channel.
func (b *Bundle) Interpolator(ch Channel) *Interpolator {
	if !ch.Valid() {
		return nil
	}
	return b.channels[ch]
}

// SampleAll samples every channel at the same time t. The five waypoints
// share one fresh backing array, so a frame costs a single allocation and
// callers may keep the result.
func (b *Bundle) SampleAll(t float64) [NumChannels]Waypoint {
	buf := make([]float64, b.dims)
	var out [NumChannels]Waypoint
	off := 0
	for _, ch := range Channels {
		ip := b.channels[ch]
		n := ip.Dim()
		out[ch] = Waypoint(buf[off : off+n : off+n])
		ip.SampleInto(t, out[ch])
		off += n
	}
	return out
}
