package occ

import "time"

// Txn is one isolated unit of work. It reads from and writes to a private
// chain of snapshots derived from its basis; nothing it does is visible to
// anyone else before Commit wins a publish.
//
// A Txn is single-goroutine and single-shot: after Commit or Discard it is
// spent, and further Get or Insert calls panic. This catches accidental
// reuse early instead of silently operating on a stale snapshot.
type Txn[S Store[S]] struct {
	h *Handle[S]
	// marker names the version current was derived from; it is what
	// Commit stakes its publish on.
	marker Marker[S]
	// basis is the snapshot marker names, kept for the store's benefit.
	basis S
	// current is basis plus this transaction's writes.
	current S
	done    bool
}

func (t *Txn[S]) mustBeActive() {
	if t.done {
		panic("occ: transaction used after Commit or Discard")
	}
}

// Get reads key from the transaction's view: its own earlier writes first,
// then the pinned basis snapshot. Concurrent commits by others never change
// the answer. The returned slice must not be mutated.
func (t *Txn[S]) Get(key []byte) ([]byte, bool) {
	t.mustBeActive()
	return t.current.Get(key)
}

// Insert buffers a write of value under key and reports whether the key was
// already present in the transaction's view. Later Gets in this transaction
// see the new value; nobody else sees anything until Commit.
func (t *Txn[S]) Insert(key, value []byte) bool {
	t.mustBeActive()
	next, existed := t.current.Insert(key, value)
	t.current = next
	return existed
}

// Basis returns the marker of the version this transaction last based
// itself on. It advances when Commit loses a race and rebases.
func (t *Txn[S]) Basis() Marker[S] {
	return t.marker
}

// Commit publishes the transaction's snapshot if its basis is still
// current, and otherwise rebases onto the winner and asks the store to
// resolve the two histories, looping until a publish lands or the store
// gives up. The transaction is consumed either way.
//
// On success the returned handle is the one the transaction came from,
// ready for the next Begin. On failure nothing was published: the store's
// resolve error comes back as-is, or ErrRetriesExhausted if the handle
// bounds attempts.
func (t *Txn[S]) Commit() (*Handle[S], error) {
	t.mustBeActive()
	t.done = true

	h := t.h
	for attempt := 1; ; attempt++ {
		// Sealing here, not at publish success, keeps the candidate
		// itself free of intent while t.current retains it for any
		// further resolve round.
		if _, ok := h.root.PublishIf(t.marker, seal(t.current)); ok {
			h.stats.commits.Add(1)
			return h, nil
		}
		h.stats.races.Add(1)

		if h.cfg.maxAttempts > 0 && attempt >= h.cfg.maxAttempts {
			h.stats.exhausted.Add(1)
			return nil, ErrRetriesExhausted
		}
		if h.cfg.backoff != nil {
			if d := h.cfg.backoff(attempt); d > 0 {
				time.Sleep(d)
			}
		}

		marker, latest := h.root.Basis()
		h.stats.resolves.Add(1)
		next, err := t.current.Resolve(latest)
		if err != nil {
			h.stats.conflicts.Add(1)
			return nil, err
		}
		t.marker = marker
		t.basis = latest
		t.current = next
	}
}

// Discard drops the transaction without publishing anything. It is safe to
// call any number of times and after Commit, so it can sit in a defer.
func (t *Txn[S]) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.h.stats.discards.Add(1)
}
