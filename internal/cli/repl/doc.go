// Package repl provides the interactive explorer of quadrille-cli.
//
// It holds one occ handle and at most one open transaction, so a session
// can poke at snapshot isolation by hand: begin, insert, read the working
// snapshot, read the published one, then commit or discard and watch the
// version move. Input is line-based; completion and history are the
// bare-bones kind.
package repl
