package occ

import "sync/atomic"

// version is one immutable published state: a snapshot plus its position in
// the publish order. Cells are allocated once and never written again, so a
// loaded *version can be read freely. The pointer identity of the cell is
// what PublishIf compares; holding a Marker keeps its cell reachable, which
// rules out the classic compare-and-swap ABA hazard where a recycled address
// masquerades as an old version.
type version[S any] struct {
	seq  uint64
	snap S
}

// Marker names exactly one published version of a Root. It is a pure
// comparison token: it cannot be dereferenced into a snapshot and two
// markers from the same Root compare meaningfully only through Seq. The
// zero Marker names no version and never matches a publish.
type Marker[S any] struct {
	v *version[S]
}

// Seq reports the version's position in the Root's publish order, starting
// at 1 for the initial snapshot. The zero Marker reports 0. Later publishes
// have strictly greater sequence numbers, so Seq orders any two markers
// taken from the same Root.
func (m Marker[S]) Seq() uint64 {
	if m.v == nil {
		return 0
	}
	return m.v.seq
}

// Root is a lock-free slot holding the current published snapshot. All
// methods are safe for concurrent use; none of them block.
//
// Most callers want the transactional surface on Handle instead and only
// drop to Root for custom publish protocols.
type Root[S any] struct {
	current atomic.Pointer[version[S]]
}

// NewRoot returns a Root whose first published version holds initial.
func NewRoot[S any](initial S) *Root[S] {
	r := &Root[S]{}
	r.current.Store(&version[S]{seq: 1, snap: initial})
	return r
}

// Load returns the current snapshot. The result is immutable and stays
// valid however many publishes follow; it just stops being current.
func (r *Root[S]) Load() S {
	return r.current.Load().snap
}

// Basis returns the current snapshot together with the marker naming its
// version. The pair comes from a single atomic load, so the marker always
// names exactly the returned snapshot, never a neighbor in the publish
// order.
func (r *Root[S]) Basis() (Marker[S], S) {
	v := r.current.Load()
	return Marker[S]{v: v}, v.snap
}

// Publish unconditionally installs snap as the current snapshot and returns
// the snapshot it displaced. It ignores any intervening publishes, so it is
// a last-writer-wins overwrite; transactional writers use PublishIf.
func (r *Root[S]) Publish(snap S) S {
	for {
		old := r.current.Load()
		next := &version[S]{seq: old.seq + 1, snap: snap}
		if r.current.CompareAndSwap(old, next) {
			return old.snap
		}
	}
}

// PublishIf installs snap as the current snapshot only if basis still names
// the current version. On success it returns the displaced snapshot and
// true. On failure the Root is untouched and the caller still owns snap,
// typically to rebuild it against a fresh Basis and try again.
func (r *Root[S]) PublishIf(basis Marker[S], snap S) (S, bool) {
	old := basis.v
	if old == nil {
		var zero S
		return zero, false
	}
	next := &version[S]{seq: old.seq + 1, snap: snap}
	if r.current.CompareAndSwap(old, next) {
		return old.snap, true
	}
	var zero S
	return zero, false
}

// Seq reports the sequence number of the current version.
func (r *Root[S]) Seq() uint64 {
	return r.current.Load().seq
}
