package bench

import (
	"sync"
	"testing"
	"time"
)

func TestLatencyEmpty(t *testing.T) {
	r := newLatencyRecorder()
	if got := r.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
	if got := r.Percentile(99); got != 0 {
		t.Errorf("Percentile(99) on empty = %v, want 0", got)
	}
	if got := r.Mean(); got != 0 {
		t.Errorf("Mean() on empty = %v, want 0", got)
	}
}

func TestLatencyPercentiles(t *testing.T) {
	r := newLatencyRecorder()
	// 90 fast observations, 10 slow.
	for i := 0; i < 90; i++ {
		r.Observe(10 * time.Microsecond)
	}
	for i := 0; i < 10; i++ {
		r.Observe(5 * time.Millisecond)
	}

	if got := r.Count(); got != 100 {
		t.Fatalf("Count() = %d, want 100", got)
	}
	// p50 falls in the fast bucket, p99 in the slow one. Bounds are
	// powers of two in microseconds.
	if got := r.Percentile(50); got > 100*time.Microsecond {
		t.Errorf("Percentile(50) = %v, want fast-bucket bound", got)
	}
	if got := r.Percentile(99); got < time.Millisecond {
		t.Errorf("Percentile(99) = %v, want slow-bucket bound", got)
	}
}

func TestLatencyMaxAndMean(t *testing.T) {
	r := newLatencyRecorder()
	r.Observe(1 * time.Millisecond)
	r.Observe(3 * time.Millisecond)

	if got := r.Max(); got != 3*time.Millisecond {
		t.Errorf("Max() = %v, want 3ms", got)
	}
	if got := r.Mean(); got != 2*time.Millisecond {
		t.Errorf("Mean() = %v, want 2ms", got)
	}
}

func TestLatencyOverflowBucket(t *testing.T) {
	r := newLatencyRecorder()
	r.Observe(time.Hour)
	if got := r.Percentile(100); got != time.Hour {
		t.Errorf("Percentile(100) = %v, want overflow max 1h", got)
	}
}

func TestLatencyConcurrentObserve(t *testing.T) {
	r := newLatencyRecorder()
	const (
		workers = 8
		perW    = 1000
	)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perW; i++ {
				r.Observe(time.Duration(i) * time.Microsecond)
			}
		}()
	}
	wg.Wait()

	if got := r.Count(); got != workers*perW {
		t.Errorf("Count() = %d, want %d", got, workers*perW)
	}
}
