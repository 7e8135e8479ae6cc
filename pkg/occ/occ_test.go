package occ

import (
	"sync"
	"testing"
)

// resolveMode selects how the test store answers Resolve.
type resolveMode int

const (
	// resolveRefuse fails every resolve, the strictest store.
	resolveRefuse resolveMode = iota
	// resolveReplay re-applies the store's pending writes onto the
	// winner, so any two commits merge.
	resolveReplay
)

// intentRec is one buffered write in a test store's delta.
type intentRec struct {
	key string
	val string
}

// storeTrace records what the commit path asked of a store lineage. One
// trace is shared by every snapshot derived from the store it was attached
// to, so a test can assert on resolve and seal traffic after the fact.
type storeTrace struct {
	mu       sync.Mutex
	seals    int
	resolves []resolveCall
}

type resolveCall struct {
	// receiver is the content of the losing snapshot, winner that of
	// the snapshot it was asked to rebase onto.
	receiver map[string]string
	winner   map[string]string
}

func (tr *storeTrace) recordSeal() {
	if tr == nil {
		return
	}
	tr.mu.Lock()
	tr.seals++
	tr.mu.Unlock()
}

func (tr *storeTrace) recordResolve(receiver, winner *testStore) {
	if tr == nil {
		return
	}
	tr.mu.Lock()
	tr.resolves = append(tr.resolves, resolveCall{
		receiver: receiver.contents(),
		winner:   winner.contents(),
	})
	tr.mu.Unlock()
}

// testStore is a minimal immutable store: Insert copies the whole map. It
// keeps a write delta so tests can observe sealing, and its resolve
// behavior is fixed at construction. resolveHook, when set, runs inside
// every Resolve so tests can interfere with the commit loop mid-retry.
type testStore struct {
	mode        resolveMode
	entries     map[string][]byte
	intent      []intentRec
	trace       *storeTrace
	resolveHook func()
}

func newTestStore(mode resolveMode) *testStore {
	return &testStore{mode: mode, entries: map[string][]byte{}}
}

func newTracedStore(mode resolveMode) (*testStore, *storeTrace) {
	s := newTestStore(mode)
	s.trace = &storeTrace{}
	return s, s.trace
}

func (s *testStore) clone() *testStore {
	next := &testStore{
		mode:        s.mode,
		entries:     make(map[string][]byte, len(s.entries)),
		intent:      append([]intentRec(nil), s.intent...),
		trace:       s.trace,
		resolveHook: s.resolveHook,
	}
	for k, v := range s.entries {
		next.entries[k] = v
	}
	return next
}

func (s *testStore) contents() map[string]string {
	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = string(v)
	}
	return out
}

func (s *testStore) Get(key []byte) ([]byte, bool) {
	v, ok := s.entries[string(key)]
	return v, ok
}

func (s *testStore) Insert(key, value []byte) (*testStore, bool) {
	k := string(key)
	_, existed := s.entries[k]
	next := s.clone()
	next.entries[k] = append([]byte(nil), value...)
	next.intent = append(next.intent, intentRec{key: k, val: string(value)})
	return next, existed
}

func (s *testStore) Resolve(latest *testStore) (*testStore, error) {
	s.trace.recordResolve(s, latest)
	if s.resolveHook != nil {
		s.resolveHook()
	}
	if s.mode == resolveRefuse {
		return nil, ErrConflict
	}
	next := latest.clone()
	next.trace = s.trace
	for _, w := range s.intent {
		next.entries[w.key] = []byte(w.val)
	}
	next.intent = append([]intentRec(nil), s.intent...)
	return next, nil
}

func (s *testStore) Seal() *testStore {
	s.trace.recordSeal()
	if len(s.intent) == 0 {
		return s
	}
	next := s.clone()
	next.intent = nil
	return next
}

func mustCommit[S Store[S]](t *testing.T, txn *Txn[S]) {
	t.Helper()
	if _, err := txn.Commit(); err != nil {
		t.Fatalf("Commit() error = %v, want nil", err)
	}
}

// getter is the read surface shared by snapshots and transactions.
type getter interface {
	Get(key []byte) ([]byte, bool)
}

func wantValue(t *testing.T, g getter, key, want string) {
	t.Helper()
	got, ok := g.Get([]byte(key))
	if !ok {
		t.Fatalf("Get(%q) missing, want %q", key, want)
	}
	if string(got) != want {
		t.Fatalf("Get(%q) = %q, want %q", key, got, want)
	}
}

func wantMissing(t *testing.T, g getter, key string) {
	t.Helper()
	if got, ok := g.Get([]byte(key)); ok {
		t.Fatalf("Get(%q) = %q, want missing", key, got)
	}
}
