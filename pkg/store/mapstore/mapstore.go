// Package mapstore is the reference snapshot store: a plain Go map copied
// in full on every insert. It is the simplest possible occ.Store and the
// baseline other stores are measured against.
//
// Its Resolve always refuses, so any two commits racing on the same handle
// conflict regardless of which keys they touched. Use it when commit races
// are rare, when conflicts must always surface to the caller, or as the
// known-good oracle in tests.
package mapstore

import (
	"fmt"

	"github.com/RaphaelDarley/quadrille/pkg/occ"
)

// errNoMerge wraps occ.ErrConflict so errors.Is spans store packages.
var errNoMerge = fmt.Errorf("mapstore: cannot merge concurrent commits: %w", occ.ErrConflict)

// Store is an immutable string-keyed map. The zero value is not usable;
// call New. All methods are read-only on the receiver and safe for
// concurrent use.
type Store struct {
	entries map[string][]byte
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: map[string][]byte{}}
}

// Get returns the value stored under key. The returned slice is the
// store's own; callers must not mutate it.
func (s *Store) Get(key []byte) ([]byte, bool) {
	v, ok := s.entries[string(key)]
	return v, ok
}

// Insert returns a full copy of the store with key set to value, plus
// whether key was already present. Both inputs are copied, so the caller
// may reuse its buffers.
func (s *Store) Insert(key, value []byte) (*Store, bool) {
	k := string(key)
	_, existed := s.entries[k]

	next := make(map[string][]byte, len(s.entries)+1)
	for ek, ev := range s.entries {
		next[ek] = ev
	}
	next[k] = append([]byte(nil), value...)
	return &Store{entries: next}, existed
}

// Resolve always fails: the store keeps no record of which keys a
// derivation wrote, so it cannot tell disjoint commits from clobbering
// ones and refuses them all.
func (s *Store) Resolve(latest *Store) (*Store, error) {
	return nil, errNoMerge
}

// Len reports the number of keys.
func (s *Store) Len() int {
	return len(s.entries)
}

// Range calls fn for every entry until fn returns false. Iteration order
// is unspecified. The slices passed to fn are the store's own; fn must not
// mutate or retain them.
func (s *Store) Range(fn func(key, value []byte) bool) {
	for k, v := range s.entries {
		if !fn([]byte(k), v) {
			return
		}
	}
}
