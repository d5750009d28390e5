package common

import (
	"context"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
)

// LoggingMiddleware logs every command and query with its duration and outcome.
// A logger already in the context (for example one carrying the HTTP request ID)
// is extended; otherwise logger is used. The result is placed in the context for
// handlers.
func LoggingMiddleware(logger *zap.Logger) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		name := RequestName(request)
		reqLogger := LoggerFromContextOr(ctx, logger).With(
			zap.String("request", name),
			zap.String("actor", ActorFromContext(ctx).String()),
		)
		ctx = WithLogger(ctx, reqLogger)

		start := time.Now()
		response, err := next(ctx, request)
		elapsed := time.Since(start)

		if err != nil {
			reqLogger.Warn("request failed", zap.Duration("elapsed", elapsed), zap.Error(err))
			return response, err
		}
		reqLogger.Debug("request handled", zap.Duration("elapsed", elapsed))
		return response, nil
	}
}

// RequestName extracts a clean request name using reflection
// Examples:
//   - "*commands.StartTaskCommand" → "StartTaskCommand"
//   - "*queries.ListTasksQuery" → "ListTasksQuery"
func RequestName(request mediator.Request) string {
	if request == nil {
		return "UnknownRequest"
	}

	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	parts := strings.Split(fullName, ".")
	return parts[len(parts)-1]
}
