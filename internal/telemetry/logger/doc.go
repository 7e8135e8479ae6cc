// Package logger provides structured logging for quadrille tooling.
//
// It wraps the standard library log/slog:
//
//   - logger.go: configuration, handlers, the package-level default
//   - context.go: context-carried loggers with bench run and worker IDs
//
// The occ core itself never logs; only the bench runner, the REPL, and
// the CLI go through this package.
package logger
