package command

import (
	"github.com/urfave/cli/v2"

	"github.com/RaphaelDarley/quadrille/internal/infra/buildinfo"
	"github.com/RaphaelDarley/quadrille/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "quadrille-cli",
		Usage:   "optimistic-concurrency workbench: contention benchmarks and an interactive explorer",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			BenchCommand(),
			ReplCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			l, err := logger.New(logger.Config{
				Level:  c.String("log-level"),
				Format: c.String("log-format"),
			})
			if err != nil {
				return err
			}
			logger.SetDefault(l)
			return nil
		},
	}
}

// globalFlags returns the flags shared by all subcommands.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			EnvVars: []string{"QUADRILLE_OUTPUT"},
			Value:   "table",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level: debug, info, warn, error",
			EnvVars: []string{"QUADRILLE_LOG_LEVEL"},
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log format: text, json",
			EnvVars: []string{"QUADRILLE_LOG_FORMAT"},
			Value:   "text",
		},
	}
}
