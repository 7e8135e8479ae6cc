// Package storetest exercises the occ.Store contract against a concrete
// snapshot implementation. Store packages call Run from their own tests so
// every implementation proves the same immutability and isolation rules;
// stores whose Resolve can merge additionally call RunMerge.
package storetest

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/RaphaelDarley/quadrille/pkg/occ"
)

// Run verifies the core Store contract: reads never mutate, inserts derive
// new snapshots and leave every ancestor behind them intact, and snapshots
// tolerate concurrent readers. newStore must return a fresh empty store per
// call.
func Run[S occ.Store[S]](t *testing.T, newStore func() S) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore()
		if v, ok := s.Get([]byte("absent")); ok {
			t.Errorf("Get(absent) = %q, true; want false", v)
		}
	})

	t.Run("InsertDerivesNewSnapshot", func(t *testing.T) {
		s0 := newStore()
		s1, existed := s0.Insert([]byte("k"), []byte("v1"))
		if existed {
			t.Error("Insert() on empty store reported existed = true")
		}
		wantValue(t, s1, "k", "v1")
		wantMissing(t, s0, "k")

		s2, existed := s1.Insert([]byte("k"), []byte("v2"))
		if !existed {
			t.Error("Insert() over present key reported existed = false")
		}
		wantValue(t, s2, "k", "v2")
		wantValue(t, s1, "k", "v1")
		wantMissing(t, s0, "k")
	})

	t.Run("InsertKeepsNeighbors", func(t *testing.T) {
		s := newStore()
		for i := 0; i < 16; i++ {
			var existed bool
			s, existed = s.Insert(key(i), []byte(fmt.Sprintf("v%d", i)))
			if existed {
				t.Fatalf("Insert(%q) reported existed = true on first write", key(i))
			}
		}
		for i := 0; i < 16; i++ {
			wantValue(t, s, string(key(i)), fmt.Sprintf("v%d", i))
		}
	})

	t.Run("InsertCopiesInputs", func(t *testing.T) {
		s0 := newStore()
		k := []byte("k")
		v := []byte("v")
		s1, _ := s0.Insert(k, v)
		k[0] = 'X'
		v[0] = 'X'
		wantValue(t, s1, "k", "v")
	})

	t.Run("InsertNilAndEmptyValues", func(t *testing.T) {
		s := newStore()
		s, _ = s.Insert([]byte("nil"), nil)
		s, _ = s.Insert([]byte("empty"), []byte{})
		for _, k := range []string{"nil", "empty"} {
			if v, ok := s.Get([]byte(k)); !ok || len(v) != 0 {
				t.Errorf("Get(%q) = %q, %v; want empty, true", k, v, ok)
			}
		}
	})

	t.Run("ConcurrentReaders", func(t *testing.T) {
		s := newStore()
		for i := 0; i < 64; i++ {
			s, _ = s.Insert(key(i), []byte(fmt.Sprintf("v%d", i)))
		}

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 64; i++ {
					if v, ok := s.Get(key(i)); !ok || string(v) != fmt.Sprintf("v%d", i) {
						t.Errorf("concurrent Get(%q) = %q, %v", key(i), v, ok)
						return
					}
				}
			}()
		}
		wg.Wait()
	})

	t.Run("DivergingLineages", func(t *testing.T) {
		base := newStore()
		base, _ = base.Insert([]byte("shared"), []byte("s"))

		left, _ := base.Insert([]byte("k"), []byte("left"))
		right, _ := base.Insert([]byte("k"), []byte("right"))

		wantMissing(t, base, "k")
		wantValue(t, left, "k", "left")
		wantValue(t, right, "k", "right")
		wantValue(t, left, "shared", "s")
		wantValue(t, right, "shared", "s")
	})

	t.Run("TransactionLifecycle", func(t *testing.T) {
		h := occ.New(newStore())

		txn := h.Begin()
		wantMissing(t, txn, "k")
		if existed := txn.Insert([]byte("k"), []byte("v")); existed {
			t.Error("Insert() existed = true on empty store")
		}
		wantValue(t, txn, "k", "v")

		sibling := h.Begin()
		wantMissing(t, sibling, "k")
		sibling.Discard()

		if _, err := txn.Commit(); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		wantValue(t, h.Snapshot(), "k", "v")
	})

	t.Run("ContendedCommits", func(t *testing.T) {
		h := occ.New(newStore())

		var wg sync.WaitGroup
		numGoroutines := 8
		numCommits := 25

		for g := 0; g < numGoroutines; g++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				k := []byte(fmt.Sprintf("worker-%d", id))
				for i := 0; i < numCommits; i++ {
					// Refusing stores surface conflicts; begin
					// again until the commit lands.
					for {
						txn := h.Begin()
						txn.Insert(k, []byte(fmt.Sprintf("%d", i)))
						_, err := txn.Commit()
						if err == nil {
							break
						}
						if !errors.Is(err, occ.ErrConflict) {
							t.Errorf("worker %d: %v", id, err)
							return
						}
					}
				}
			}(g)
		}
		wg.Wait()

		snap := h.Snapshot()
		for g := 0; g < numGoroutines; g++ {
			wantValue(t, snap, fmt.Sprintf("worker-%d", g), fmt.Sprintf("%d", numCommits-1))
		}
	})
}

// RunMerge verifies resolve behavior for stores that merge concurrent
// commits over disjoint keys. Refusing stores must not call it.
func RunMerge[S occ.Store[S]](t *testing.T, newStore func() S) {
	t.Run("DisjointCommitsBothLand", func(t *testing.T) {
		h := occ.New(newStore())

		a := h.Begin()
		b := h.Begin()
		a.Insert([]byte("from-a"), []byte("1"))
		b.Insert([]byte("from-b"), []byte("2"))

		if _, err := a.Commit(); err != nil {
			t.Fatalf("first Commit() error = %v", err)
		}
		if _, err := b.Commit(); err != nil {
			t.Fatalf("second Commit() error = %v", err)
		}

		snap := h.Snapshot()
		wantValue(t, snap, "from-a", "1")
		wantValue(t, snap, "from-b", "2")
	})

	t.Run("DisjointContention", func(t *testing.T) {
		h := occ.New(newStore())

		var wg sync.WaitGroup
		numGoroutines := 8
		numCommits := 25

		for g := 0; g < numGoroutines; g++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for i := 0; i < numCommits; i++ {
					txn := h.Begin()
					txn.Insert([]byte(fmt.Sprintf("w%d-i%d", id, i)), []byte("x"))
					if _, err := txn.Commit(); err != nil {
						t.Errorf("worker %d commit %d: %v", id, i, err)
						return
					}
				}
			}(g)
		}
		wg.Wait()

		snap := h.Snapshot()
		for g := 0; g < numGoroutines; g++ {
			for i := 0; i < numCommits; i++ {
				wantValue(t, snap, fmt.Sprintf("w%d-i%d", g, i), "x")
			}
		}
		if got := h.Version(); got != uint64(numGoroutines*numCommits)+1 {
			t.Errorf("Version() = %d, want %d", got, numGoroutines*numCommits+1)
		}
	})

	t.Run("RebasePreservesNewerNeighbors", func(t *testing.T) {
		h := occ.New(newStore())

		loser := h.Begin()
		loser.Insert([]byte("mine"), []byte("m"))

		if err := h.Update(func(txn *occ.Txn[S]) error {
			txn.Insert([]byte("theirs"), []byte("t"))
			return nil
		}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		if _, err := loser.Commit(); err != nil {
			t.Fatalf("Commit() after rebase error = %v", err)
		}
		snap := h.Snapshot()
		wantValue(t, snap, "mine", "m")
		wantValue(t, snap, "theirs", "t")
	})
}

func key(i int) []byte {
	return []byte(fmt.Sprintf("key-%03d", i))
}

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
