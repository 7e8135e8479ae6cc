// Package hashstore is a hash-partitioned snapshot store. Keys spread over
// a fixed set of buckets by murmur3 hash; an insert copies only the bucket
// it lands in, so derivation cost is a fixed fraction of the store instead
// of the whole of it.
//
// Its resolve policy is fixed last-writer-wins: raced commits replay their
// journaled writes over the winner, key by key, and never conflict. Use it
// for write-heavy loads where every value is independently replaceable,
// such as counters sampled elsewhere or per-session blobs.
package hashstore

import (
	"github.com/spaolacci/murmur3"
)

// DefaultBuckets is the bucket count used when none is configured.
const DefaultBuckets = 32

type bucket map[string][]byte

// writeRec journals one write, newest first. Last-writer-wins replay needs
// no before image, just the write itself.
type writeRec struct {
	key   []byte
	value []byte
	next  *writeRec
}

// Store is an immutable bucketed map. The zero value is not usable; call
// New. Safe for concurrent use.
type Store struct {
	buckets []bucket
	mask    uint32
	count   int
	intent  *writeRec
}

// Option configures a store at construction.
type Option func(*options)

type options struct {
	buckets int
}

// WithBuckets sets the bucket count. It must be a power of two; anything
// else falls back to DefaultBuckets.
func WithBuckets(n int) Option {
	return func(o *options) {
		o.buckets = n
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	o := options{buckets: DefaultBuckets}
	for _, opt := range opts {
		opt(&o)
	}
	n := o.buckets
	if n < 1 || n&(n-1) != 0 {
		n = DefaultBuckets
	}

	buckets := make([]bucket, n)
	for i := range buckets {
		buckets[i] = bucket{}
	}
	return &Store{buckets: buckets, mask: uint32(n - 1)}
}

// Buckets reports the bucket count.
func (s *Store) Buckets() int {
	return len(s.buckets)
}

func (s *Store) bucketFor(key []byte) uint32 {
	return murmur3.Sum32(key) & s.mask
}

// Get returns the value stored under key. The returned slice is the
// store's own; callers must not mutate it.
func (s *Store) Get(key []byte) ([]byte, bool) {
	v, ok := s.buckets[s.bucketFor(key)][string(key)]
	return v, ok
}

// Insert returns a snapshot with key set to value plus whether key was
// already present. Only the receiving bucket is copied; the other buckets
// are shared with the receiver. Both inputs are copied.
func (s *Store) Insert(key, value []byte) (*Store, bool) {
	k := string(key)
	idx := s.bucketFor(key)
	old := s.buckets[idx]
	_, existed := old[k]

	fresh := make(bucket, len(old)+1)
	for bk, bv := range old {
		fresh[bk] = bv
	}
	fresh[k] = append([]byte(nil), value...)

	buckets := make([]bucket, len(s.buckets))
	copy(buckets, s.buckets)
	buckets[idx] = fresh

	count := s.count
	if !existed {
		count++
	}
	return &Store{
		buckets: buckets,
		mask:    s.mask,
		count:   count,
		intent:  &writeRec{key: append([]byte(nil), key...), value: fresh[k], next: s.intent},
	}, existed
}

// Seal returns a snapshot with the same contents and an empty journal.
func (s *Store) Seal() *Store {
	if s.intent == nil {
		return s
	}
	return &Store{buckets: s.buckets, mask: s.mask, count: s.count}
}

// Resolve replays this store's journaled writes over latest, last writer
// winning every key. It never fails. Only buckets touched by the journal
// are copied; the result carries the journal forward for any further race.
func (s *Store) Resolve(latest *Store) (*Store, error) {
	if s.intent == nil {
		return latest, nil
	}

	buckets := make([]bucket, len(latest.buckets))
	copy(buckets, latest.buckets)
	copied := make(map[uint32]bool, 4)
	count := latest.count

	// Newest-first order: skip keys already replayed so the newest
	// write per key sticks.
	applied := make(map[string]bool, 4)
	var intent *writeRec
	for rec := s.intent; rec != nil; rec = rec.next {
		k := string(rec.key)
		if applied[k] {
			continue
		}
		applied[k] = true

		idx := latest.bucketFor(rec.key)
		if !copied[idx] {
			fresh := make(bucket, len(buckets[idx])+1)
			for bk, bv := range buckets[idx] {
				fresh[bk] = bv
			}
			buckets[idx] = fresh
			copied[idx] = true
		}
		if _, existed := buckets[idx][k]; !existed {
			count++
		}
		buckets[idx][k] = rec.value
		intent = &writeRec{key: rec.key, value: rec.value, next: intent}
	}

	return &Store{buckets: buckets, mask: latest.mask, count: count, intent: intent}, nil
}

// Len reports the number of keys.
func (s *Store) Len() int {
	return s.count
}

// Range calls fn for every entry until fn returns false. Iteration order
// is unspecified. The slices passed to fn are the store's own; fn must not
// mutate or retain them.
func (s *Store) Range(fn func(key, value []byte) bool) {
	for _, b := range s.buckets {
		for k, v := range b {
			if !fn([]byte(k), v) {
				return
			}
		}
	}
}
