package occ

import "sync/atomic"

// Stats counts commit-path events on a Handle. Counters only ever increase
// and are updated with atomic adds, so reading them is safe at any time;
// Snapshot copies them in one pass for reporting.
type Stats struct {
	begins    atomic.Uint64
	commits   atomic.Uint64
	races     atomic.Uint64
	resolves  atomic.Uint64
	conflicts atomic.Uint64
	exhausted atomic.Uint64
	discards  atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of a Handle's counters.
type StatsSnapshot struct {
	// Begins counts transactions started with Begin or Update.
	Begins uint64
	// Commits counts publishes that succeeded.
	Commits uint64
	// Races counts publish attempts that lost to a concurrent writer.
	// A single commit can race several times before winning.
	Races uint64
	// Resolves counts snapshot merges attempted after a lost race.
	Resolves uint64
	// Conflicts counts commits aborted because the store refused to
	// merge.
	Conflicts uint64
	// Exhausted counts commits aborted by the handle's attempt bound.
	Exhausted uint64
	// Discards counts transactions dropped without committing.
	Discards uint64
}

// Snapshot returns a consistent-enough copy of the counters. Each field is
// read atomically; the set as a whole is not fenced against concurrent
// commits, which is fine for monitoring.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Begins:    s.begins.Load(),
		Commits:   s.commits.Load(),
		Races:     s.races.Load(),
		Resolves:  s.resolves.Load(),
		Conflicts: s.conflicts.Load(),
		Exhausted: s.exhausted.Load(),
		Discards:  s.discards.Load(),
	}
}
