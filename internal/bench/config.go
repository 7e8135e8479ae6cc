package bench

import (
	"fmt"
	"time"
)

// Config holds one bench run's parameters. Fields map 1:1 onto the
// bench.* keys of the YAML config file and the QUADRILLE_BENCH_* env
// variables.
type Config struct {
	// Store selects the snapshot store: map, btree, or hash.
	Store string `koanf:"store"`
	// Policy selects the btree merge policy: refuse, merge-disjoint, or
	// last-writer-wins. Ignored by the other stores.
	Policy string `koanf:"policy"`

	// Workers is the number of concurrent committers.
	Workers int `koanf:"workers"`
	// Commits is the number of commit attempts per worker.
	Commits int `koanf:"commits"`
	// WritesPerCommit is the number of inserts per transaction.
	WritesPerCommit int `koanf:"writes_per_commit"`
	// Keyspace is the number of distinct keys workers draw from.
	// Smaller keyspaces mean more collisions and more resolve traffic.
	Keyspace int `koanf:"keyspace"`
	// ValueSize is the inserted value length in bytes.
	ValueSize int `koanf:"value_size"`

	// Rate caps commits per second across all workers; 0 is unlimited.
	Rate float64 `koanf:"rate"`
	// MaxAttempts bounds publish attempts per commit; 0 is unbounded.
	MaxAttempts int `koanf:"max_attempts"`
	// Backoff is the base pause before a commit retry; the pause grows
	// linearly with the retry ordinal. 0 disables backoff.
	Backoff time.Duration `koanf:"backoff"`

	// Seed fixes the per-worker random streams; 0 seeds from the clock.
	Seed int64 `koanf:"seed"`
	// MetricsAddr, when set, serves Prometheus metrics on this address
	// for the duration of the run.
	MetricsAddr string `koanf:"metrics_addr"`
}

// Default returns the default bench configuration.
func Default() Config {
	return Config{
		Store:           "btree",
		Policy:          "merge-disjoint",
		Workers:         8,
		Commits:         1000,
		WritesPerCommit: 1,
		Keyspace:        10000,
		ValueSize:       64,
	}
}

// Verify checks the configuration for values the runner cannot work with.
func (c *Config) Verify() error {
	switch c.Store {
	case "map", "btree", "hash":
	default:
		return fmt.Errorf("bench: unknown store %q", c.Store)
	}
	if c.Workers < 1 {
		return fmt.Errorf("bench: workers must be at least 1, got %d", c.Workers)
	}
	if c.Commits < 1 {
		return fmt.Errorf("bench: commits must be at least 1, got %d", c.Commits)
	}
	if c.WritesPerCommit < 1 {
		return fmt.Errorf("bench: writes_per_commit must be at least 1, got %d", c.WritesPerCommit)
	}
	if c.Keyspace < 1 {
		return fmt.Errorf("bench: keyspace must be at least 1, got %d", c.Keyspace)
	}
	if c.ValueSize < 1 {
		return fmt.Errorf("bench: value_size must be at least 1, got %d", c.ValueSize)
	}
	if c.Rate < 0 {
		return fmt.Errorf("bench: rate must not be negative, got %v", c.Rate)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("bench: max_attempts must not be negative, got %d", c.MaxAttempts)
	}
	if c.Backoff < 0 {
		return fmt.Errorf("bench: backoff must not be negative, got %v", c.Backoff)
	}
	return nil
}
