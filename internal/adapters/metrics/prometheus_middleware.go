package metrics

import (
	"context"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
)

// PrometheusMiddleware times every mediator request and tracks how many are in flight.
// A nil collector makes the middleware a pass-through.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		name := common.RequestName(request)
		done := collector.Begin(name)
		defer done()

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(name, time.Since(start).Seconds(), err == nil)
		return response, err
	}
}
