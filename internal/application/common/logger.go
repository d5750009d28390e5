package common

import (
	"context"

	"go.uber.org/zap"
)

type contextKey int

const (
	loggerKey contextKey = iota
	actorKey
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext returns the request logger, or a no-op logger outside a request
func LoggerFromContext(ctx context.Context) *zap.Logger {
	return LoggerFromContextOr(ctx, zap.NewNop())
}

// LoggerFromContextOr returns the request logger, or fallback when the
// context carries none. Transports attach request-scoped fields such as the
// request ID before the mediator runs, and those fields must survive.
func LoggerFromContextOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
