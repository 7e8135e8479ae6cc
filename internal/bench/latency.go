package bench

import (
	"math"
	"sync/atomic"
	"time"
)

// latencyBuckets are upper bounds in microseconds, log-spaced from 1µs to
// ~8.4s. Observations above the last bound land in the overflow bucket.
var latencyBuckets = func() []uint64 {
	bounds := make([]uint64, 24)
	for i := range bounds {
		bounds[i] = 1 << i
	}
	return bounds
}()

// latencyRecorder is a fixed-bucket histogram safe for concurrent
// observation. Percentiles come back as bucket upper bounds, which is
// plenty for a throughput report.
type latencyRecorder struct {
	counts   [25]atomic.Uint64
	total    atomic.Uint64
	sumMicro atomic.Uint64
	maxMicro atomic.Uint64
}

func newLatencyRecorder() *latencyRecorder {
	return &latencyRecorder{}
}

// Observe records one commit latency.
func (r *latencyRecorder) Observe(d time.Duration) {
	micros := uint64(d.Microseconds())

	idx := len(latencyBuckets)
	for i, bound := range latencyBuckets {
		if micros <= bound {
			idx = i
			break
		}
	}
	r.counts[idx].Add(1)
	r.total.Add(1)
	r.sumMicro.Add(micros)

	for {
		old := r.maxMicro.Load()
		if micros <= old || r.maxMicro.CompareAndSwap(old, micros) {
			return
		}
	}
}

// Count reports the number of observations.
func (r *latencyRecorder) Count() uint64 {
	return r.total.Load()
}

// Mean returns the average observed latency.
func (r *latencyRecorder) Mean() time.Duration {
	n := r.total.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(r.sumMicro.Load()/n) * time.Microsecond
}

// Max returns the largest observed latency.
func (r *latencyRecorder) Max() time.Duration {
	return time.Duration(r.maxMicro.Load()) * time.Microsecond
}

// Percentile returns the upper bound of the bucket containing the p-th
// percentile observation, for p in (0, 100].
func (r *latencyRecorder) Percentile(p float64) time.Duration {
	n := r.total.Load()
	if n == 0 {
		return 0
	}
	rank := uint64(math.Ceil(p / 100 * float64(n)))
	if rank < 1 {
		rank = 1
	}

	var seen uint64
	for i := range r.counts {
		seen += r.counts[i].Load()
		if seen >= rank {
			if i < len(latencyBuckets) {
				return time.Duration(latencyBuckets[i]) * time.Microsecond
			}
			// Overflow bucket: the max is the only bound we have.
			return r.Max()
		}
	}
	return r.Max()
}
