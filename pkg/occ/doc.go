// Package occ provides optimistic concurrency control over an immutable,
// copy-on-write key-value snapshot type.
//
// Any snapshot type satisfying the Store capability can be shared through a
// Handle: concurrent actors open isolated transactions against the current
// snapshot, buffer writes by deriving new snapshots, and publish atomically
// by racing a compare-and-swap on a single version slot. Losing a race never
// blocks and never corrupts; the loser re-reads the latest snapshot and asks
// the store to fold its intent onto it, retrying until it wins or the store
// declares the conflict unresolvable.
//
// Features:
//
//   - Snapshot isolation: a transaction reads one pinned version, always
//   - Atomic publish: all of a transaction's writes become visible at once
//   - Lock-free: readers never wait, writers never deadlock
//   - Store-defined merging: conflict policy lives in the snapshot type
//
// Usage:
//
//	h := occ.New(mapstore.New())
//	txn := h.Begin()
//	defer txn.Discard()
//	txn.Insert([]byte("k"), []byte("v"))
//	if _, err := txn.Commit(); err != nil {
//		// another writer won and the store refused to merge
//	}
//
// Thread Safety:
//
// A Handle and its Root are safe for unbounded concurrent use. A Txn belongs
// to a single goroutine; share the Handle, not the Txn.
package occ
