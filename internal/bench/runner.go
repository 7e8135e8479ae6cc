package bench

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/RaphaelDarley/quadrille/internal/telemetry/logger"
	"github.com/RaphaelDarley/quadrille/internal/telemetry/metric"
	"github.com/RaphaelDarley/quadrille/pkg/occ"
)

// Run executes one bench run over a handle seeded with empty and returns
// the report. Cancelling ctx stops workers at their next commit boundary;
// the partial run is still audited and reported, with Interrupted set.
//
// The only error Run returns is an audit failure or a bad Config; commit
// conflicts are an expected outcome and show up as counters in the
// Result.
func Run[S occ.Store[S]](ctx context.Context, cfg Config, empty S) (*Result, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}

	var opts []occ.Option
	if cfg.MaxAttempts > 0 {
		opts = append(opts, occ.WithMaxAttempts(cfg.MaxAttempts))
	}
	if cfg.Backoff > 0 {
		base := cfg.Backoff
		opts = append(opts, occ.WithBackoff(func(retry int) time.Duration {
			return time.Duration(retry) * base
		}))
	}
	h := occ.New(empty, opts...)

	runID := ulid.Make().String()
	log := logger.FromContext(ctx).With("run_id", runID)
	log.Info("bench run starting",
		"store", cfg.Store, "policy", cfg.Policy,
		"workers", cfg.Workers, "commits", cfg.Commits)

	if cfg.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.MetricsAddr, h)
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Workers)
	}

	rec := NewRecorder()
	lat := newLatencyRecorder()

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			runWorker(ctx, cfg, h, rec, lat, limiter, rand.New(rand.NewSource(seed+int64(w))))
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	snap := h.Snapshot()
	stats := h.Stats().Snapshot()

	size := rec.Distinct()
	if sized, ok := any(snap).(interface{ Len() int }); ok {
		size = sized.Len()
	}
	auditErr := rec.Audit(snap.Get, size)
	if auditErr != nil {
		log.Error("bench audit failed", "error", auditErr)
	}

	res := &Result{
		RunID:             runID,
		Store:             cfg.Store,
		Policy:            cfg.Policy,
		Workers:           cfg.Workers,
		Attempts:          int(lat.Count()),
		Duration:          elapsed,
		Commits:           stats.Commits,
		Conflicts:         stats.Conflicts,
		Races:             stats.Races,
		Resolves:          stats.Resolves,
		Exhausted:         stats.Exhausted,
		LatencyP50:        lat.Percentile(50),
		LatencyP90:        lat.Percentile(90),
		LatencyP99:        lat.Percentile(99),
		LatencyMax:        lat.Max(),
		LatencyMean:       lat.Mean(),
		FinalVersion:      h.Version(),
		FinalKeys:         size,
		DistinctCommitted: rec.Distinct(),
		Verified:          auditErr == nil,
		Interrupted:       ctx.Err() != nil,
	}
	if elapsed > 0 {
		res.OpsPerSec = float64(stats.Commits) / elapsed.Seconds()
	}

	log.Info("bench run finished",
		"commits", res.Commits, "conflicts", res.Conflicts,
		"ops_per_sec", res.OpsPerSec, "verified", res.Verified)
	return res, auditErr
}

// runWorker drives one goroutine's share of commit attempts.
func runWorker[S occ.Store[S]](
	ctx context.Context,
	cfg Config,
	h *occ.Handle[S],
	rec *Recorder,
	lat *latencyRecorder,
	limiter *rate.Limiter,
	rng *rand.Rand,
) {
	keys := make([][]byte, 0, cfg.WritesPerCommit)
	for i := 0; i < cfg.Commits; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}

		txn := h.Begin()
		keys = keys[:0]
		for j := 0; j < cfg.WritesPerCommit; j++ {
			key := []byte(fmt.Sprintf("key-%08d", rng.Intn(cfg.Keyspace)))
			value := make([]byte, cfg.ValueSize)
			rng.Read(value)
			txn.Insert(key, value)
			keys = append(keys, key)
		}

		begin := time.Now()
		_, err := txn.Commit()
		lat.Observe(time.Since(begin))
		if err == nil {
			rec.RecordCommit(keys)
		}
		// Conflicts and exhausted retries are the run's subject matter,
		// counted in the handle's stats; the worker just moves on.
	}
}

// serveMetrics exposes the handle's counters on addr until the returned
// stop function runs.
func serveMetrics[S occ.Store[S]](addr string, h *occ.Handle[S]) (func(), error) {
	collector := metric.NewCollector(h.Stats(),
		metric.WithStoreKeys(func() float64 {
			if sized, ok := any(h.Snapshot()).(interface{ Len() int }); ok {
				return float64(sized.Len())
			}
			return 0
		}),
		metric.WithRootVersion(func() float64 {
			return float64(h.Version())
		}),
	)
	reg, err := metric.NewRegistry(collector)
	if err != nil {
		return nil, fmt.Errorf("bench: register metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metric.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics listener failed", "addr", addr, "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}
