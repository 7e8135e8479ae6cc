package command

import (
	"github.com/urfave/cli/v2"

	"github.com/RaphaelDarley/quadrille/internal/cli/repl"
	"github.com/RaphaelDarley/quadrille/pkg/occ"
	"github.com/RaphaelDarley/quadrille/pkg/store/btreestore"
	"github.com/RaphaelDarley/quadrille/pkg/store/hashstore"
	"github.com/RaphaelDarley/quadrille/pkg/store/mapstore"
)

// ReplCommand returns the repl subcommand.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "explore a handle interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "store",
				Usage: "snapshot store: map, btree, hash",
				Value: "btree",
			},
			&cli.StringFlag{
				Name:  "policy",
				Usage: "btree merge policy: refuse, merge-disjoint, last-writer-wins",
				Value: "merge-disjoint",
			},
		},
		Action: runRepl,
	}
}

func runRepl(c *cli.Context) error {
	switch store := c.String("store"); store {
	case "map":
		return repl.New(occ.New(mapstore.New())).Run()
	case "hash":
		return repl.New(occ.New(hashstore.New())).Run()
	case "btree":
		policy, err := btreestore.ParsePolicy(c.String("policy"))
		if err != nil {
			return err
		}
		return repl.New(occ.New(btreestore.New(btreestore.WithPolicy(policy)))).Run()
	default:
		return cli.Exit("unknown store "+store+", want map, btree, or hash", 1)
	}
}
