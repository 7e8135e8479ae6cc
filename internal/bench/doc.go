// Package bench drives contention load against one occ handle and checks
// the outcome.
//
// A run spawns workers that open transactions, insert random keys, and
// commit, racing each other on the shared root. Every successfully
// committed key is recorded in a concurrent map; when the workers drain,
// the final published snapshot is audited against that record, so a run
// doubles as an operational check that no committed write was lost and no
// uncommitted write leaked.
//
// The package is generic over the snapshot store; the CLI picks the
// concrete store and merge policy from flags.
package bench
