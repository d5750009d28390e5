package metrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/metrics"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
)

type StartTaskCommand struct{}

type ListTasksQuery struct{}

func TestProductionMetricsCollector_Register(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(func() {
		metrics.Registry = nil
		metrics.SetGlobalProductionCollector(nil)
	})

	collector := metrics.NewProductionMetricsCollector()
	require.NoError(t, collector.Register())
	metrics.SetGlobalProductionCollector(collector)

	metrics.RecordRegistration("prod-1", "partial", 30, 5)
	metrics.RecordRegistration("prod-1", "partial", -4, 0)
	metrics.RecordBulkRow("warning")
	metrics.RecordTransition("pending", "in_progress")

	families, err := metrics.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "shopfloor_production_quality_units_total")
	assert.Contains(t, names, "shopfloor_production_corrected_units_total")
	assert.Contains(t, names, "shopfloor_production_bulk_rows_total")
}

func TestRecordFunctions_NoCollector(t *testing.T) {
	metrics.SetGlobalProductionCollector(nil)

	assert.NotPanics(t, func() {
		metrics.RecordRegistration("p", "partial", 1, 0)
		metrics.RecordBulkRow("success")
		metrics.RecordTransition("a", "b")
		metrics.RecordUnallocatedSurplus("p", 3)
	})
}

func TestPrometheusMiddleware(t *testing.T) {
	collector := metrics.NewCommandMetricsCollector(nil)
	mw := metrics.PrometheusMiddleware(collector)
	fail := errors.New("fail")

	var inFlight float64
	_, _ = mw(context.Background(), &StartTaskCommand{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		inFlight = testutil.ToFloat64(collector.Collectors()[2])
		return nil, nil
	})
	_, err := mw(context.Background(), &StartTaskCommand{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return nil, fail
	})
	_, _ = mw(context.Background(), &ListTasksQuery{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return nil, nil
	})

	assert.ErrorIs(t, err, fail)
	assert.Equal(t, 1.0, inFlight)
	// StartTaskCommand success and error, ListTasksQuery success
	assert.Equal(t, 3, testutil.CollectAndCount(collector.Collectors()[1]))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.Collectors()[2]))
}

func TestPrometheusMiddleware_NilCollectorPassesThrough(t *testing.T) {
	mw := metrics.PrometheusMiddleware(nil)

	resp, err := mw(context.Background(), &StartTaskCommand{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestRequestKind(t *testing.T) {
	assert.Equal(t, "query", metrics.RequestKind("CheckOverlapsQuery"))
	assert.Equal(t, "command", metrics.RequestKind("BulkRegisterProductionCommand"))
}
