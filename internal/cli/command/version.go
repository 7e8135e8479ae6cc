package command

import (
	"github.com/urfave/cli/v2"

	"github.com/RaphaelDarley/quadrille/internal/cli/output"
	"github.com/RaphaelDarley/quadrille/internal/infra/buildinfo"
)

// VersionCommand returns the version subcommand.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print build information",
		Action: func(c *cli.Context) error {
			f := output.NewFormatter(output.Format(c.String("output")))
			return f.Format(c.App.Writer, buildinfo.Get())
		},
	}
}
