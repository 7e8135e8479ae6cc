// Package cmap provides a concurrent string-keyed map sharded by murmur3
// hash.
//
// Each shard carries its own read-write mutex, so goroutines hashing to
// different shards rarely contend. The map suits workloads with many
// writers over mostly disjoint keys, where one sync.RWMutex would
// serialize everything.
//
// Unlike the snapshot stores under pkg/store, a Map is mutable shared
// state. It is bookkeeping, not a versioned snapshot; nothing in it is
// published or rolled back.
package cmap
