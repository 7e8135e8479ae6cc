// Package main provides the entry point for quadrille-cli.
//
// quadrille-cli is the workbench around the quadrille library: it runs
// contention benchmarks against in-process handles and offers an
// interactive explorer for poking at snapshot isolation by hand.
package main

import (
	"fmt"
	"os"

	"github.com/RaphaelDarley/quadrille/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
