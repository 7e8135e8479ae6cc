package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/RaphaelDarley/quadrille/internal/cli/output"
	"github.com/RaphaelDarley/quadrille/pkg/store/btreestore"
	"github.com/RaphaelDarley/quadrille/pkg/store/hashstore"
	"github.com/RaphaelDarley/quadrille/pkg/store/mapstore"
)

func smallConfig() Config {
	cfg := Default()
	cfg.Workers = 4
	cfg.Commits = 50
	cfg.Keyspace = 200
	cfg.ValueSize = 8
	cfg.Seed = 1
	return cfg
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Workers = 0
	if _, err := Run(context.Background(), cfg, mapstore.New()); err == nil {
		t.Fatal("Run() with zero workers succeeded, want config error")
	}
}

func TestRunSingleWorkerMapstore(t *testing.T) {
	cfg := smallConfig()
	cfg.Store = "map"
	cfg.Policy = ""
	cfg.Workers = 1

	res, err := Run(context.Background(), cfg, mapstore.New())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// One worker never races, so every attempt commits.
	if res.Commits != uint64(cfg.Commits) {
		t.Errorf("Commits = %d, want %d", res.Commits, cfg.Commits)
	}
	if res.Conflicts != 0 {
		t.Errorf("Conflicts = %d, want 0", res.Conflicts)
	}
	if !res.Verified {
		t.Error("Verified = false, want true")
	}
	if res.FinalVersion != uint64(cfg.Commits)+1 {
		t.Errorf("FinalVersion = %d, want %d", res.FinalVersion, cfg.Commits+1)
	}
	if res.FinalKeys != res.DistinctCommitted {
		t.Errorf("FinalKeys = %d, DistinctCommitted = %d; want equal", res.FinalKeys, res.DistinctCommitted)
	}
}

func TestRunContendedLastWriterWins(t *testing.T) {
	cfg := smallConfig()
	cfg.Store = "btree"
	cfg.Policy = "last-writer-wins"

	empty := btreestore.New(btreestore.WithPolicy(btreestore.LastWriterWins))
	res, err := Run(context.Background(), cfg, empty)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Last-writer-wins never conflicts, so every attempt lands.
	want := uint64(cfg.Workers * cfg.Commits)
	if res.Commits != want {
		t.Errorf("Commits = %d, want %d", res.Commits, want)
	}
	if res.Conflicts != 0 {
		t.Errorf("Conflicts = %d, want 0", res.Conflicts)
	}
	if !res.Verified {
		t.Error("Verified = false, want true")
	}
}

func TestRunContendedHashstore(t *testing.T) {
	cfg := smallConfig()
	cfg.Store = "hash"
	cfg.Policy = ""

	res, err := Run(context.Background(), cfg, hashstore.New())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Verified {
		t.Error("Verified = false, want true")
	}
	if res.Commits != uint64(cfg.Workers*cfg.Commits) {
		t.Errorf("Commits = %d, want %d", res.Commits, cfg.Workers*cfg.Commits)
	}
}

func TestRunContendedRefuse(t *testing.T) {
	cfg := smallConfig()
	cfg.Store = "map"
	cfg.Policy = ""

	res, err := Run(context.Background(), cfg, mapstore.New())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Refuse-policy commits that lose a race abort; each attempt either
	// commits or conflicts.
	total := res.Commits + res.Conflicts
	if total != uint64(cfg.Workers*cfg.Commits) {
		t.Errorf("Commits+Conflicts = %d, want %d", total, cfg.Workers*cfg.Commits)
	}
	if !res.Verified {
		t.Error("Verified = false, want true")
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := smallConfig()
	cfg.Store = "map"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, cfg, mapstore.New())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Interrupted {
		t.Error("Interrupted = false after cancelled context, want true")
	}
	if res.Commits != 0 {
		t.Errorf("Commits = %d on cancelled run, want 0", res.Commits)
	}
}

func TestResultWriteJSON(t *testing.T) {
	cfg := smallConfig()
	cfg.Store = "map"
	cfg.Workers = 1
	res, err := Run(context.Background(), cfg, mapstore.New())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var buf bytes.Buffer
	if err := res.Write(&buf, output.FormatJSON); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if decoded["store"] != "map" {
		t.Errorf("store = %v, want map", decoded["store"])
	}
	if decoded["run_id"] == "" {
		t.Error("run_id missing from report")
	}
}
