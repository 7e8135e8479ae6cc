package bench

import (
	"fmt"

	"github.com/RaphaelDarley/quadrille/pkg/cmap"
)

// Recorder tracks which keys were successfully committed during a run.
// Workers record after each commit returns success; the shard locks in
// cmap keep the record exact even when commits finish back to back.
type Recorder struct {
	committed *cmap.Map[int]
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{committed: cmap.New[int]()}
}

// RecordCommit notes that keys were published by a successful commit.
func (r *Recorder) RecordCommit(keys [][]byte) {
	for _, k := range keys {
		r.committed.Update(string(k), func(n int, _ bool) int {
			return n + 1
		})
	}
}

// Distinct reports the number of distinct keys committed so far.
func (r *Recorder) Distinct() int {
	return r.committed.Count()
}

// Audit compares the final published snapshot against the record. get and
// size describe the snapshot. Every recorded key must be present, and the
// snapshot must hold exactly as many keys as were recorded: a missing key
// means a committed write was lost, an extra one means an uncommitted
// write leaked.
func (r *Recorder) Audit(get func(key []byte) ([]byte, bool), size int) error {
	var missing int
	var firstMissing string
	r.committed.Range(func(key string, _ int) bool {
		if _, ok := get([]byte(key)); !ok {
			if missing == 0 {
				firstMissing = key
			}
			missing++
		}
		return true
	})
	if missing > 0 {
		return fmt.Errorf("bench: %d committed keys missing from final snapshot (first: %q)", missing, firstMissing)
	}

	if distinct := r.committed.Count(); size != distinct {
		return fmt.Errorf("bench: final snapshot has %d keys, want %d distinct committed", size, distinct)
	}
	return nil
}
