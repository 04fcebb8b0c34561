package lloyd

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with clustering-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSession adds a session field to the logger.
func (l *Logger) WithSession(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("session", id),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// LogStart logs the start of a clustering run.
func (l *Logger) LogStart(ctx context.Context, points, k int, method InitMethod, err error) {
	if err != nil {
		l.ErrorContext(ctx, "start failed",
			"points", points,
			"k", k,
			"init", method.String(),
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "clustering started",
		"points", points,
		"k", k,
		"init", method.String(),
	)
}

// LogStep logs a completed iteration.
func (l *Logger) LogStep(ctx context.Context, res StepResult) {
	l.DebugContext(ctx, "iteration completed",
		"iteration", res.Iteration,
		"changed", res.Changed,
		"inertia", res.Inertia,
		"moved", res.Moved,
	)
}

// LogConverged logs convergence.
func (l *Logger) LogConverged(ctx context.Context, iteration int, elapsed time.Duration) {
	l.InfoContext(ctx, "converged",
		"iteration", iteration,
		"elapsed", elapsed,
	)
}

// LogMaxIterations logs that the iteration cap was reached before convergence.
func (l *Logger) LogMaxIterations(ctx context.Context, maxIterations int) {
	l.WarnContext(ctx, "maximum iterations reached",
		"max_iterations", maxIterations,
	)
}

// LogReset logs a session reset.
func (l *Logger) LogReset(ctx context.Context) {
	l.InfoContext(ctx, "session reset")
}

// LogParse logs the outcome of parsing user-supplied points.
func (l *Logger) LogParse(ctx context.Context, added, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "points parsed with failures",
			"added", added,
			"failed", failed,
		)
	} else {
		l.InfoContext(ctx, "points parsed",
			"added", added,
		)
	}
}
