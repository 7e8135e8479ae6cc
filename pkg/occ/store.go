package occ

// Store is the capability a snapshot type must provide to be managed by a
// Handle. Implementations are immutable values: Get never changes the
// snapshot, Insert returns a new snapshot and leaves the receiver intact.
// The same snapshot may be read by any number of goroutines at once, so the
// methods must be safe without external locking.
//
// The type parameter is self-referential: a store over snapshots of type S
// is itself an S. Concrete types instantiate it as, for example,
// Store[*mapstore.Store].
type Store[S any] interface {
	// Get returns the value stored under key and whether the key is
	// present. Callers must not mutate the returned slice.
	Get(key []byte) ([]byte, bool)

	// Insert returns a snapshot with key set to value, plus whether the
	// key already existed in the receiver. The receiver is unchanged.
	Insert(key, value []byte) (S, bool)

	// Resolve folds the receiver's pending intent onto latest, a newer
	// snapshot that won a publish race. It returns a snapshot that is
	// latest plus the receiver's writes, or an error if the store
	// considers the two histories unmergeable. Resolve must not modify
	// either input; a failed resolve aborts the commit.
	Resolve(latest S) (S, error)
}

// Sealer is an optional capability for stores that track write intent as a
// delta against their basis. Seal returns an equivalent snapshot whose
// intent record is empty, marking the point where the delta was published
// and a fresh one begins. The commit path seals every candidate it
// publishes so that intent never leaks from one committed transaction into
// the transactions that start from it.
//
// Stores that resolve without a delta, or that never resolve at all, can
// ignore this interface.
type Sealer[S any] interface {
	Seal() S
}

// seal returns snap with its write intent cleared when the store opts in
// via Sealer, and snap unchanged otherwise.
func seal[S any](snap S) S {
	if s, ok := any(snap).(Sealer[S]); ok {
		return s.Seal()
	}
	return snap
}
