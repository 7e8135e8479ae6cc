package logger

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	loggerKey contextKey = "quadrille.logger"
	runIDKey  contextKey = "quadrille.run_id"
	workerKey contextKey = "quadrille.worker"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context, falling back to the
// default logger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRunID adds a bench run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the bench run ID, or "" when absent.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// WithWorker adds a bench worker ordinal to the context.
func WithWorker(ctx context.Context, worker int) context.Context {
	return context.WithValue(ctx, workerKey, worker)
}

// WorkerFromContext extracts the worker ordinal, or -1 when absent.
func WorkerFromContext(ctx context.Context) int {
	if w, ok := ctx.Value(workerKey).(int); ok {
		return w
	}
	return -1
}

// L returns the context's logger enriched with the run ID and worker
// ordinal when the context carries them.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if runID := RunIDFromContext(ctx); runID != "" {
		l = l.With("run_id", runID)
	}
	if w := WorkerFromContext(ctx); w >= 0 {
		l = l.With("worker", w)
	}
	return l
}
