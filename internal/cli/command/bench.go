package command

import (
	"github.com/urfave/cli/v2"

	"github.com/RaphaelDarley/quadrille/internal/bench"
	"github.com/RaphaelDarley/quadrille/internal/cli/output"
	"github.com/RaphaelDarley/quadrille/internal/infra/confloader"
	"github.com/RaphaelDarley/quadrille/internal/infra/shutdown"
	"github.com/RaphaelDarley/quadrille/pkg/store/btreestore"
	"github.com/RaphaelDarley/quadrille/pkg/store/hashstore"
	"github.com/RaphaelDarley/quadrille/pkg/store/mapstore"
)

// benchFile is the koanf shape of the bench config file: one bench
// section, so the same file can grow other sections later.
type benchFile struct {
	Bench bench.Config `koanf:"bench"`
}

// BenchCommand returns the bench subcommand.
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "run contention load against one handle and audit the outcome",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file (bench.* keys)",
				EnvVars: []string{"QUADRILLE_CONFIG"},
			},
			&cli.StringFlag{Name: "store", Usage: "snapshot store: map, btree, hash"},
			&cli.StringFlag{Name: "policy", Usage: "btree merge policy: refuse, merge-disjoint, last-writer-wins"},
			&cli.IntFlag{Name: "workers", Usage: "concurrent committers"},
			&cli.IntFlag{Name: "commits", Usage: "commit attempts per worker"},
			&cli.IntFlag{Name: "writes-per-commit", Usage: "inserts per transaction"},
			&cli.IntFlag{Name: "keyspace", Usage: "distinct keys workers draw from"},
			&cli.IntFlag{Name: "value-size", Usage: "value length in bytes"},
			&cli.Float64Flag{Name: "rate", Usage: "commit rate cap per second, 0 = unlimited"},
			&cli.IntFlag{Name: "max-attempts", Usage: "publish attempts per commit, 0 = unbounded"},
			&cli.DurationFlag{Name: "backoff", Usage: "base retry pause, grows linearly per retry"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed, 0 = from clock"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve Prometheus metrics on this address during the run"},
		},
		Action: runBench,
	}
}

func runBench(c *cli.Context) error {
	cfg, err := loadBenchConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := shutdown.Context(c.Context)
	defer stop()

	var res *bench.Result
	switch cfg.Store {
	case "map":
		res, err = bench.Run(ctx, cfg, mapstore.New())
	case "hash":
		res, err = bench.Run(ctx, cfg, hashstore.New())
	case "btree":
		policy, perr := btreestore.ParsePolicy(cfg.Policy)
		if perr != nil {
			return perr
		}
		res, err = bench.Run(ctx, cfg, btreestore.New(btreestore.WithPolicy(policy)))
	default:
		// Config verification inside Run rejects this too, but without
		// a store there is nothing to seed Run with.
		return cfg.Verify()
	}

	if res != nil {
		if werr := res.Write(c.App.Writer, output.Format(c.String("output"))); werr != nil {
			return werr
		}
	}
	return err
}

// loadBenchConfig merges defaults, the config file, QUADRILLE_BENCH_*
// environment variables, and set flags, in rising priority.
func loadBenchConfig(c *cli.Context) (bench.Config, error) {
	file := benchFile{Bench: bench.Default()}

	loader := confloader.NewLoader(confloader.WithConfigFile(c.String("config")))
	if err := loader.Load(&file); err != nil {
		return bench.Config{}, err
	}

	overrides := map[string]any{}
	setString := func(flag, key string) {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	setInt := func(flag, key string) {
		if c.IsSet(flag) {
			overrides[key] = c.Int(flag)
		}
	}
	setString("store", "bench.store")
	setString("policy", "bench.policy")
	setInt("workers", "bench.workers")
	setInt("commits", "bench.commits")
	setInt("writes-per-commit", "bench.writes_per_commit")
	setInt("keyspace", "bench.keyspace")
	setInt("value-size", "bench.value_size")
	setInt("max-attempts", "bench.max_attempts")
	setString("metrics-addr", "bench.metrics_addr")
	if c.IsSet("rate") {
		overrides["bench.rate"] = c.Float64("rate")
	}
	if c.IsSet("backoff") {
		overrides["bench.backoff"] = c.Duration("backoff")
	}
	if c.IsSet("seed") {
		overrides["bench.seed"] = c.Int64("seed")
	}

	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return bench.Config{}, err
		}
		if err := loader.Unmarshal(&file); err != nil {
			return bench.Config{}, err
		}
	}
	return file.Bench, nil
}
