// Package btreestore is the workhorse snapshot store: an ordered B-tree
// shadow-copied on insert, so deriving a snapshot is cheap no matter how
// large the store has grown.
//
// Unlike mapstore it remembers what each derivation wrote. That intent
// journal is what lets Resolve merge commits that raced: the Refuse policy
// keeps mapstore's always-conflict behavior, MergeDisjoint admits racers
// whose written keys were left alone by the winner, and LastWriterWins
// replays writes over anything. The journal resets at every publish, so a
// transaction only ever answers for its own writes.
package btreestore

import (
	"bytes"
	"fmt"

	"github.com/tidwall/btree"

	"github.com/RaphaelDarley/quadrille/pkg/occ"
)

// btreeDegree is the approximate number of items per B-tree node, the
// figure the ecosystem converged on for byte-slice keys.
const btreeDegree = 32

var errRefuse = fmt.Errorf("btreestore: refuse policy forbids merging: %w", occ.ErrConflict)

type item struct {
	key   []byte
	value []byte
}

func lessItems(a, b item) bool {
	return bytes.Compare(a.key, b.key) == -1
}

// writeRec is one journal entry: the written value plus what the key held
// in the snapshot the write derived from. Records form an immutable list,
// newest first, shared structurally between derivations.
type writeRec struct {
	key    []byte
	value  []byte
	before []byte
	had    bool
	next   *writeRec
}

// Store is an immutable ordered snapshot. The zero value is not usable;
// call New. Insert shadow-copies the tree, so ancestors stay intact and
// derivation cost is logarithmic, not linear. Safe for concurrent use.
type Store struct {
	policy Policy
	tree   *btree.BTreeG[item]
	// intent is the journal of writes since the last publish, nil when
	// sealed.
	intent *writeRec
}

// Option configures a store at construction.
type Option func(*Store)

// WithPolicy selects the resolve policy. The default is Refuse.
func WithPolicy(p Policy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tree: btree.NewBTreeGOptions(lessItems, btree.Options{
			Degree: btreeDegree,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy reports the resolve policy this store was built with.
func (s *Store) Policy() Policy {
	return s.policy
}

// Get returns the value stored under key. The returned slice is the
// store's own; callers must not mutate it.
func (s *Store) Get(key []byte) ([]byte, bool) {
	it, ok := s.tree.Get(item{key: key})
	if !ok {
		return nil, false
	}
	return it.value, true
}

// Insert returns a snapshot with key set to value plus whether key was
// already present, journaling the write for later resolves. Both inputs
// are copied. The receiver is untouched.
func (s *Store) Insert(key, value []byte) (*Store, bool) {
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)

	old, existed := s.tree.Get(item{key: k})

	tree := s.tree.Copy()
	tree.Set(item{key: k, value: v})

	rec := &writeRec{key: k, value: v, next: s.intent}
	if existed {
		rec.before = old.value
		rec.had = true
	}
	return &Store{policy: s.policy, tree: tree, intent: rec}, existed
}

// Seal returns a snapshot with the same contents and an empty journal. The
// commit path calls it at every publish so intent never crosses a publish
// boundary.
func (s *Store) Seal() *Store {
	if s.intent == nil {
		return s
	}
	return &Store{policy: s.policy, tree: s.tree}
}

// Resolve replays this store's journal onto latest according to policy.
// MergeDisjoint first checks every journaled key still holds the value
// this store based its write on; a changed key fails the whole resolve.
// The result carries a fresh journal recorded against latest, so a further
// race replays the same writes again.
func (s *Store) Resolve(latest *Store) (*Store, error) {
	if s.intent == nil {
		return latest, nil
	}

	switch s.policy {
	case MergeDisjoint:
		for _, w := range s.journal() {
			got, ok := latest.tree.Get(item{key: w.key})
			if ok != w.had || (w.had && !bytes.Equal(got.value, w.before)) {
				return nil, fmt.Errorf("btreestore: key %q changed since basis: %w",
					w.key, occ.ErrConflict)
			}
		}
	case LastWriterWins:
		// No validation, replay over whatever is there.
	default:
		return nil, errRefuse
	}

	tree := latest.tree.Copy()
	var intent *writeRec
	for _, w := range s.journal() {
		old, existed := tree.Get(item{key: w.key})
		tree.Set(item{key: w.key, value: w.value})
		rec := &writeRec{key: w.key, value: w.value, next: intent}
		if existed {
			rec.before = old.value
			rec.had = true
		}
		intent = rec
	}
	return &Store{policy: s.policy, tree: tree, intent: intent}, nil
}

// journal flattens the intent list into one record per key. The newest
// write supplies the value to replay, the oldest supplies the basis-time
// before image; self-overwrites in between collapse away.
func (s *Store) journal() []writeRec {
	idx := map[string]int{}
	var out []writeRec

	for rec := s.intent; rec != nil; rec = rec.next {
		k := string(rec.key)
		i, seen := idx[k]
		if !seen {
			out = append(out, writeRec{key: rec.key, value: rec.value})
			i = len(out) - 1
			idx[k] = i
		}
		// Older records push the before image further back; the
		// oldest one sticks.
		out[i].before = rec.before
		out[i].had = rec.had
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Len reports the number of keys.
func (s *Store) Len() int {
	return s.tree.Len()
}

// Scan calls fn in ascending key order for every entry with start <= key <
// end until fn returns false. A nil start begins at the smallest key, a
// nil end runs to the largest. The slices passed to fn are the store's
// own; fn must not mutate or retain them.
func (s *Store) Scan(start, end []byte, fn func(key, value []byte) bool) {
	iter := func(it item) bool {
		if end != nil && bytes.Compare(it.key, end) >= 0 {
			return false
		}
		return fn(it.key, it.value)
	}
	if start == nil {
		s.tree.Scan(iter)
		return
	}
	s.tree.Ascend(item{key: start}, iter)
}
