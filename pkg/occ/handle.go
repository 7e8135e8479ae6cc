package occ

import "time"

// Option configures a Handle at construction.
type Option func(*config)

type config struct {
	// maxAttempts bounds publish attempts per commit; 0 means retry
	// until the store refuses to resolve.
	maxAttempts int
	// backoff, when set, returns how long to sleep before retry n
	// (first retry is n=1). Nil or non-positive durations mean no wait.
	backoff func(retry int) time.Duration
}

// WithMaxAttempts bounds how many publish attempts a single Commit makes
// before giving up with ErrRetriesExhausted. Values below 1 restore the
// default of retrying until the store itself refuses.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 0
		}
		c.maxAttempts = n
	}
}

// WithBackoff makes Commit sleep between publish attempts. The function
// receives the retry ordinal starting at 1 and returns the pause before
// that retry; returning 0 skips the pause. Useful to shed contention on
// hot roots.
func WithBackoff(f func(retry int) time.Duration) Option {
	return func(c *config) {
		c.backoff = f
	}
}

// Handle is the shared entry point to one optimistically managed store. It
// owns the Root all transactions race on. Handles are cheap and safe to
// share; everything that mutates goes through a Txn.
type Handle[S Store[S]] struct {
	root  *Root[S]
	cfg   config
	stats Stats
}

// New returns a Handle whose first published snapshot is empty, which is
// usually the store package's fresh value, for example mapstore.New().
func New[S Store[S]](empty S, opts ...Option) *Handle[S] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handle[S]{
		root: NewRoot(seal(empty)),
		cfg:  cfg,
	}
}

// Begin opens a transaction pinned to the snapshot that is current right
// now. The transaction is isolated from every later publish until it
// commits. Callers that may abandon it should defer Discard.
func (h *Handle[S]) Begin() *Txn[S] {
	h.stats.begins.Add(1)
	marker, snap := h.root.Basis()
	return &Txn[S]{
		h:       h,
		marker:  marker,
		basis:   snap,
		current: snap,
	}
}

// Update runs fn inside a transaction and commits if fn returns nil. A
// non-nil error from fn discards the transaction and is returned verbatim;
// otherwise Update returns the commit's outcome.
func (h *Handle[S]) Update(fn func(txn *Txn[S]) error) error {
	txn := h.Begin()
	defer txn.Discard()
	if err := fn(txn); err != nil {
		return err
	}
	_, err := txn.Commit()
	return err
}

// Snapshot returns the current published snapshot for read-only use. It is
// a basis without a marker: good for serving reads, useless for committing.
func (h *Handle[S]) Snapshot() S {
	return h.root.Load()
}

// Version reports the sequence number of the current published snapshot.
func (h *Handle[S]) Version() uint64 {
	return h.root.Seq()
}

// Root exposes the underlying publish slot for callers that need the raw
// basis and publish protocol rather than transactions.
func (h *Handle[S]) Root() *Root[S] {
	return h.root
}

// Stats returns the handle's commit-path counters.
func (h *Handle[S]) Stats() *Stats {
	return &h.stats
}
