package btreestore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/RaphaelDarley/quadrille/pkg/occ"
	"github.com/RaphaelDarley/quadrille/pkg/storetest"
)

func TestStoreContract(t *testing.T) {
	policies := []Policy{Refuse, MergeDisjoint, LastWriterWins}
	for _, p := range policies {
		t.Run(p.String(), func(t *testing.T) {
			storetest.Run(t, func() *Store {
				return New(WithPolicy(p))
			})
		})
	}
}

func TestMergeContract(t *testing.T) {
	policies := []Policy{MergeDisjoint, LastWriterWins}
	for _, p := range policies {
		t.Run(p.String(), func(t *testing.T) {
			storetest.RunMerge(t, func() *Store {
				return New(WithPolicy(p))
			})
		})
	}
}

func TestPolicyRoundTrip(t *testing.T) {
	tests := []struct {
		policy Policy
		name   string
	}{
		{Refuse, "refuse"},
		{MergeDisjoint, "merge-disjoint"},
		{LastWriterWins, "last-writer-wins"},
	}
	for _, tt := range tests {
		if got := tt.policy.String(); got != tt.name {
			t.Errorf("%d.String() = %q, want %q", tt.policy, got, tt.name)
		}
		parsed, err := ParsePolicy(tt.name)
		if err != nil || parsed != tt.policy {
			t.Errorf("ParsePolicy(%q) = %v, %v; want %v, nil", tt.name, parsed, err, tt.policy)
		}
	}

	if _, err := ParsePolicy("mob-rule"); err == nil {
		t.Error("ParsePolicy(mob-rule) error = nil, want error")
	}
}

func TestDefaultPolicyRefuses(t *testing.T) {
	s := New()
	if s.Policy() != Refuse {
		t.Fatalf("Policy() = %v, want Refuse", s.Policy())
	}

	a, _ := s.Insert([]byte("x"), []byte("1"))
	b, _ := s.Insert([]byte("y"), []byte("2"))
	if _, err := a.Resolve(b); !errors.Is(err, occ.ErrConflict) {
		t.Errorf("Resolve() error = %v, want occ.ErrConflict", err)
	}
}

func TestResolveWithoutWritesAdoptsLatest(t *testing.T) {
	s := New() // Refuse, but nothing was written
	latest, _ := s.Insert([]byte("k"), []byte("v"))
	latest = latest.Seal()

	got, err := s.Resolve(latest)
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}
	if got != latest {
		t.Error("Resolve() with empty journal should return latest unchanged")
	}
}

func TestMergeDisjointValidation(t *testing.T) {
	tests := []struct {
		name string
		// prepare returns the racing snapshot and the latest snapshot
		// it must resolve against.
		prepare  func() (racer, latest *Store)
		wantErr  bool
		wantKeys map[string]string
	}{
		{
			name: "disjoint keys merge",
			prepare: func() (*Store, *Store) {
				base := New(WithPolicy(MergeDisjoint))
				racer, _ := base.Insert([]byte("a"), []byte("1"))
				latest, _ := base.Insert([]byte("b"), []byte("2"))
				return racer, latest.Seal()
			},
			wantKeys: map[string]string{"a": "1", "b": "2"},
		},
		{
			name: "winner already wrote the key",
			prepare: func() (*Store, *Store) {
				base := New(WithPolicy(MergeDisjoint))
				racer, _ := base.Insert([]byte("a"), []byte("1"))
				latest, _ := base.Insert([]byte("a"), []byte("9"))
				return racer, latest.Seal()
			},
			wantErr: true,
		},
		{
			name: "key existed and winner changed it",
			prepare: func() (*Store, *Store) {
				base := New(WithPolicy(MergeDisjoint))
				base, _ = base.Insert([]byte("a"), []byte("0"))
				base = base.Seal()
				racer, _ := base.Insert([]byte("a"), []byte("1"))
				latest, _ := base.Insert([]byte("a"), []byte("9"))
				return racer, latest.Seal()
			},
			wantErr: true,
		},
		{
			name: "winner restored the basis value",
			prepare: func() (*Store, *Store) {
				base := New(WithPolicy(MergeDisjoint))
				base, _ = base.Insert([]byte("a"), []byte("0"))
				base = base.Seal()
				racer, _ := base.Insert([]byte("a"), []byte("1"))
				// The winner wrote a=0 again: byte-equal to the
				// racer's before image, so the racer may proceed.
				latest, _ := base.Insert([]byte("a"), []byte("0"))
				return racer, latest.Seal()
			},
			wantKeys: map[string]string{"a": "1"},
		},
		{
			name: "self overwrite validates against the basis",
			prepare: func() (*Store, *Store) {
				base := New(WithPolicy(MergeDisjoint))
				racer, _ := base.Insert([]byte("a"), []byte("1"))
				racer, _ = racer.Insert([]byte("a"), []byte("2"))
				latest, _ := base.Insert([]byte("b"), []byte("9"))
				return racer, latest.Seal()
			},
			wantKeys: map[string]string{"a": "2", "b": "9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			racer, latest := tt.prepare()
			got, err := racer.Resolve(latest)
			if tt.wantErr {
				if !errors.Is(err, occ.ErrConflict) {
					t.Fatalf("Resolve() error = %v, want occ.ErrConflict", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v, want nil", err)
			}
			for k, want := range tt.wantKeys {
				v, ok := got.Get([]byte(k))
				if !ok || string(v) != want {
					t.Errorf("Get(%q) = %q, %v; want %q", k, v, ok, want)
				}
			}
		})
	}
}

func TestMergeDisjointFirstCommitterWins(t *testing.T) {
	h := occ.New(New(WithPolicy(MergeDisjoint)))

	first := h.Begin()
	second := h.Begin()
	first.Insert([]byte("hot"), []byte("first"))
	second.Insert([]byte("hot"), []byte("second"))

	if _, err := first.Commit(); err != nil {
		t.Fatalf("first Commit() error = %v", err)
	}
	if _, err := second.Commit(); !errors.Is(err, occ.ErrConflict) {
		t.Fatalf("second Commit() error = %v, want occ.ErrConflict", err)
	}

	v, _ := h.Snapshot().Get([]byte("hot"))
	if string(v) != "first" {
		t.Errorf("hot = %q, want %q", v, "first")
	}
}

func TestLastWriterWinsClobbers(t *testing.T) {
	h := occ.New(New(WithPolicy(LastWriterWins)))

	first := h.Begin()
	second := h.Begin()
	first.Insert([]byte("hot"), []byte("first"))
	second.Insert([]byte("hot"), []byte("second"))

	if _, err := first.Commit(); err != nil {
		t.Fatalf("first Commit() error = %v", err)
	}
	if _, err := second.Commit(); err != nil {
		t.Fatalf("second Commit() error = %v, want nil", err)
	}

	v, _ := h.Snapshot().Get([]byte("hot"))
	if string(v) != "second" {
		t.Errorf("hot = %q, want %q (last committer)", v, "second")
	}
}

func TestSealClearsJournal(t *testing.T) {
	s := New(WithPolicy(MergeDisjoint))
	s, _ = s.Insert([]byte("a"), []byte("1"))
	s, _ = s.Insert([]byte("b"), []byte("2"))
	if s.intent == nil {
		t.Fatal("journal empty after inserts")
	}

	sealed := s.Seal()
	if sealed.intent != nil {
		t.Error("journal survives Seal()")
	}
	if v, ok := sealed.Get([]byte("a")); !ok || string(v) != "1" {
		t.Errorf("sealed Get(a) = %q, %v; want 1, true", v, ok)
	}
	if sealed.Seal() != sealed {
		t.Error("Seal() of a sealed store should return the receiver")
	}
	// The original still carries its journal.
	if s.intent == nil {
		t.Error("Seal() cleared the receiver's journal")
	}
}

// A transaction begun on a committed snapshot must answer only for its own
// writes when it rebases, not for the writes it inherited.
func TestCommittedSnapshotDoesNotLeakIntent(t *testing.T) {
	h := occ.New(New(WithPolicy(LastWriterWins)))

	if err := h.Update(func(txn *occ.Txn[*Store]) error {
		txn.Insert([]byte("a"), []byte("1"))
		return nil
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if h.Snapshot().intent != nil {
		t.Fatal("published snapshot carries a journal")
	}

	b := h.Begin()
	c := h.Begin()
	b.Insert([]byte("fresh"), []byte("3"))
	c.Insert([]byte("a"), []byte("9"))

	if _, err := c.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if _, err := b.Commit(); err != nil {
		t.Fatalf("rebased Commit() error = %v", err)
	}

	snap := h.Snapshot()
	if v, _ := snap.Get([]byte("a")); string(v) != "9" {
		t.Errorf("a = %q, want 9 (b must not replay the inherited write)", v)
	}
	if v, _ := snap.Get([]byte("fresh")); string(v) != "3" {
		t.Errorf("fresh = %q, want 3", v)
	}
}

func TestJournalCollapsesSelfOverwrites(t *testing.T) {
	s := New(WithPolicy(MergeDisjoint))
	s, _ = s.Insert([]byte("k"), []byte("1"))
	s, _ = s.Insert([]byte("k"), []byte("2"))
	s, _ = s.Insert([]byte("j"), []byte("5"))

	recs := s.journal()
	if len(recs) != 2 {
		t.Fatalf("journal() length = %d, want 2", len(recs))
	}
	byKey := map[string]writeRec{}
	for _, r := range recs {
		byKey[string(r.key)] = r
	}
	k := byKey["k"]
	if string(k.value) != "2" {
		t.Errorf("k replay value = %q, want 2 (newest write)", k.value)
	}
	if k.had {
		t.Error("k before image claims presence, want absent at basis")
	}
	j := byKey["j"]
	if string(j.value) != "5" || j.had {
		t.Errorf("j = {value: %q, had: %v}, want {5, false}", j.value, j.had)
	}
}

func TestScan(t *testing.T) {
	s := New()
	for _, i := range []int{5, 1, 9, 3, 7} {
		s, _ = s.Insert([]byte(fmt.Sprintf("k%d", i)), []byte(fmt.Sprintf("v%d", i)))
	}

	collect := func(start, end []byte) []string {
		var got []string
		s.Scan(start, end, func(k, v []byte) bool {
			got = append(got, string(k))
			return true
		})
		return got
	}

	tests := []struct {
		name       string
		start, end []byte
		want       []string
	}{
		{"full ascending", nil, nil, []string{"k1", "k3", "k5", "k7", "k9"}},
		{"from start key", []byte("k3"), nil, []string{"k3", "k5", "k7", "k9"}},
		{"from between keys", []byte("k4"), nil, []string{"k5", "k7", "k9"}},
		{"bounded end", nil, []byte("k7"), []string{"k1", "k3", "k5"}},
		{"window", []byte("k3"), []byte("k9"), []string{"k3", "k5", "k7"}},
		{"empty window", []byte("k7"), []byte("k7"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(tt.start, tt.end)
			if len(got) != len(tt.want) {
				t.Fatalf("Scan() visited %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Scan() visited %v, want %v", got, tt.want)
				}
			}
		})
	}

	t.Run("early stop", func(t *testing.T) {
		visits := 0
		s.Scan(nil, nil, func(k, v []byte) bool {
			visits++
			return visits < 2
		})
		if visits != 2 {
			t.Errorf("Scan() with early stop visited %d, want 2", visits)
		}
	})
}

func TestLen(t *testing.T) {
	s := New()
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	s, _ = s.Insert([]byte("a"), []byte("1"))
	s, _ = s.Insert([]byte("b"), []byte("2"))
	s, _ = s.Insert([]byte("a"), []byte("3"))
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

// Derivations must not disturb the snapshots they shadow-copy from, even
// deep chains of them.
func TestShadowCopyLineage(t *testing.T) {
	gens := make([]*Store, 0, 33)
	s := New()
	gens = append(gens, s)
	for i := 0; i < 32; i++ {
		s, _ = s.Insert([]byte(fmt.Sprintf("k%02d", i)), []byte(fmt.Sprintf("v%d", i)))
		gens = append(gens, s)
	}

	for g, snap := range gens {
		if snap.Len() != g {
			t.Fatalf("generation %d Len() = %d, want %d", g, snap.Len(), g)
		}
		for i := 0; i < g; i++ {
			k := fmt.Sprintf("k%02d", i)
			if v, ok := snap.Get([]byte(k)); !ok || string(v) != fmt.Sprintf("v%d", i) {
				t.Fatalf("generation %d Get(%s) = %q, %v", g, k, v, ok)
			}
		}
	}
}
