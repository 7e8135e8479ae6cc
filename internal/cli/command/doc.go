// Package command defines the quadrille-cli command tree.
//
// Three subcommands: bench runs contention load against an in-process
// handle and reports the outcome, repl opens the interactive explorer,
// and version prints build information. Everything runs in-process; there
// is no server to connect to.
package command
