package player

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"
)

const (
	// overrunFactor marks a tick interval as an overrun when it exceeds the
	// nominal period by this factor.
	overrunFactor = 1.5

	// jitterWindow bounds how many recent intervals are kept for the
	// percentile. Counts, mean and max cover every tick.
	jitterWindow = 1 << 16
)

// TickStats summarizes how closely the loop kept its rate.
// Jitter is the absolute difference between an observed tick interval and
// the nominal period. P99Jitter covers the most recent ticks only.
type TickStats struct {
	Period     time.Duration `json:"period"`
	Ticks      int           `json:"ticks"`
	Overruns   int           `json:"overruns"`
	MeanJitter time.Duration `json:"mean_jitter"`
	MaxJitter  time.Duration `json:"max_jitter"`
	P99Jitter  time.Duration `json:"p99_jitter"`
}

// tickRecorder accumulates tick intervals in constant memory, however long
// the trajectory runs.
type tickRecorder struct {
	period   time.Duration
	nominal  float64
	ticks    int
	overruns int
	sum      float64
	max      float64
	window   stats.Float64Data
	next     int
}

func newTickRecorder(period time.Duration) *tickRecorder {
	return &tickRecorder{period: period, nominal: period.Seconds()}
}

// add records one interval in seconds.
func (r *tickRecorder) add(interval float64) {
	j := math.Abs(interval - r.nominal)
	r.ticks++
	if interval > overrunFactor*r.nominal {
		r.overruns++
	}
	r.sum += j
	if j > r.max {
		r.max = j
	}
	if len(r.window) < jitterWindow {
		r.window = append(r.window, j)
		return
	}
	r.window[r.next] = j
	r.next = (r.next + 1) % jitterWindow
}

func (r *tickRecorder) stats() TickStats {
	ts := TickStats{Period: r.period, Ticks: r.ticks, Overruns: r.overruns}
	if r.ticks == 0 {
		return ts
	}
	ts.MeanJitter = seconds(r.sum / float64(r.ticks))
	ts.MaxJitter = seconds(r.max)
	if p99, err := stats.Percentile(r.window, 99); err == nil {
		ts.P99Jitter = seconds(p99)
	}
	return ts
}

func computeTickStats(period time.Duration, intervals []float64) TickStats {
	r := newTickRecorder(period)
	for _, iv := range intervals {
		r.add(iv)
	}
	return r.stats()
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
