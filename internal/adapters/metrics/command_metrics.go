package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultCommandBuckets cover handler latencies from a few milliseconds up to a
// slow bulk registration
var DefaultCommandBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0}

// CommandMetricsCollector records mediator traffic split into commands and queries
type CommandMetricsCollector struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	inFlight *prometheus.GaugeVec
}

// NewCommandMetricsCollector creates a collector. Nil or empty buckets use DefaultCommandBuckets.
func NewCommandMetricsCollector(buckets []float64) *CommandMetricsCollector {
	if len(buckets) == 0 {
		buckets = DefaultCommandBuckets
	}
	return &CommandMetricsCollector{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "request_duration_seconds",
				Help:      "Handler duration by request, kind and outcome",
				Buckets:   buckets,
			},
			[]string{"request", "kind", "status"},
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "requests_total",
				Help:      "Requests handled by request, kind and outcome",
			},
			[]string{"request", "kind", "status"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "requests_in_flight",
				Help:      "Requests currently being handled",
			},
			[]string{"kind"},
		),
	}
}

// Register registers the collectors with the global registry
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range c.Collectors() {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RequestKind classifies a request name as "query" or "command"
func RequestKind(requestName string) string {
	if strings.HasSuffix(requestName, "Query") {
		return "query"
	}
	return "command"
}

// Begin marks a request as in flight and returns the function that ends it
func (c *CommandMetricsCollector) Begin(requestName string) func() {
	gauge := c.inFlight.WithLabelValues(RequestKind(requestName))
	gauge.Inc()
	return gauge.Dec
}

// RecordCommandExecution records one handled request
func (c *CommandMetricsCollector) RecordCommandExecution(requestName string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	kind := RequestKind(requestName)
	c.duration.WithLabelValues(requestName, kind, status).Observe(duration)
	c.total.WithLabelValues(requestName, kind, status).Inc()
}

// Collectors returns the underlying Prometheus collectors
func (c *CommandMetricsCollector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.duration, c.total, c.inFlight}
}
