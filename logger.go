package spatialcheck

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with engine-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRule adds a rule identifier field to the logger.
func (l *Logger) WithRule(ruleID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("rule", ruleID),
	}
}

// WithLayer adds a layer name field to the logger.
func (l *Logger) WithLayer(layer string) *Logger {
	return &Logger{
		Logger: l.Logger.With("layer", layer),
	}
}

// WithCase adds a case type field to the logger.
func (l *Logger) WithCase(caseType string) *Logger {
	return &Logger{
		Logger: l.Logger.With("case", caseType),
	}
}

// LogRule logs one rule evaluation.
func (l *Logger) LogRule(ctx context.Context, ruleID string, findings int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rule evaluation failed",
			"rule", ruleID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "rule evaluated",
			"rule", ruleID,
			"findings", findings,
		)
	}
}

// LogRun logs a whole validation run.
func (l *Logger) LogRun(ctx context.Context, checked, skipped, errors, warnings int) {
	if errors > 0 {
		l.InfoContext(ctx, "validation completed with findings",
			"checked", checked,
			"skipped", skipped,
			"errors", errors,
			"warnings", warnings,
		)
	} else {
		l.InfoContext(ctx, "validation completed clean",
			"checked", checked,
			"skipped", skipped,
			"warnings", warnings,
		)
	}
}
