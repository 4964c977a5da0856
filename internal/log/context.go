package log

import (
	"context"
	"log/slog"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// WithContext stores the logger in ctx.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts the run logger from ctx, falling back to the default slog logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

const executionIDContextKey contextKey = "execution_id"

// WithExecutionID stores the identifier of the current invocation in ctx.
func WithExecutionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, executionIDContextKey, id)
}

// ExecutionID returns the invocation identifier stored in ctx, or "".
func ExecutionID(ctx context.Context) string {
	id, _ := ctx.Value(executionIDContextKey).(string)
	return id
}
