// Package shutdown provides interrupt handling for long bench runs.
//
// A run started under Context stops cleanly on SIGINT or SIGTERM: workers
// drain at the next commit boundary and the runner still emits a report
// for the work that finished.
package shutdown

import (
	"context"
	"os/signal"
	"syscall"
)

// Context returns a child of parent that is cancelled on SIGINT or
// SIGTERM. The returned stop function releases the signal hookup; callers
// should defer it so a second interrupt falls through to the default
// handler and kills the process.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
