package benchmark

import (
	"fmt"
	"math/rand"

	"github.com/RaphaelDarley/quadrille/pkg/occ"
	"github.com/RaphaelDarley/quadrille/pkg/store/btreestore"
	"github.com/RaphaelDarley/quadrille/pkg/store/hashstore"
	"github.com/RaphaelDarley/quadrille/pkg/store/mapstore"
)

// PrefillCounts are the store sizes the derivation-cost benchmarks run
// at. The naive mapstore copies everything per insert, so it gets the
// small grid.
var PrefillCounts = []int{1000, 10000, 100000}

// SmallPrefillCounts for the full-copy store.
var SmallPrefillCounts = []int{100, 1000, 10000}

const valueSize = 64

// benchKey returns the i-th key of the benchmark keyspace.
func benchKey(i int) []byte {
	return []byte(fmt.Sprintf("key-%08d", i))
}

// benchValue returns a deterministic pseudo-random value.
func benchValue(rng *rand.Rand) []byte {
	v := make([]byte, valueSize)
	rng.Read(v)
	return v
}

// prefill inserts n sequential keys, returning the grown snapshot.
func prefill[S occ.Store[S]](s S, n int) S {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		s, _ = s.Insert(benchKey(i), benchValue(rng))
	}
	return s
}

// stores lists the snapshot stores under test. Merge-capable stores get
// the policy the contended benchmarks need.
func newMap() *mapstore.Store { return mapstore.New() }

func newBtreeLWW() *btreestore.Store {
	return btreestore.New(btreestore.WithPolicy(btreestore.LastWriterWins))
}

func newHash() *hashstore.Store { return hashstore.New() }
