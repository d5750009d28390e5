package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ProductionMetricsCollector handles production task metrics
type ProductionMetricsCollector struct {
	transitionsTotal        *prometheus.CounterVec
	registrationsTotal      *prometheus.CounterVec
	qualityUnitsTotal       *prometheus.CounterVec
	correctedUnitsTotal     *prometheus.CounterVec
	overproductionTotal     *prometheus.CounterVec
	bulkRowsTotal           *prometheus.CounterVec
	unallocatedSurplusTotal *prometheus.CounterVec
}

// NewProductionMetricsCollector creates a new production metrics collector
func NewProductionMetricsCollector() *ProductionMetricsCollector {
	return &ProductionMetricsCollector{
		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "task_transitions_total",
				Help:      "Task status transitions by source and target status",
			},
			[]string{"from", "to"},
		),

		registrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "registrations_total",
				Help:      "Quantity registrations by operation",
			},
			[]string{"operation"},
		),

		qualityUnitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "quality_units_total",
				Help:      "Quality units credited to stock by product",
			},
			[]string{"product_id"},
		),

		correctedUnitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "corrected_units_total",
				Help:      "Quality units debited by corrections, by product",
			},
			[]string{"product_id"},
		),

		overproductionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "overproduction_units_total",
				Help:      "Quality units produced beyond the requested quantity",
			},
			[]string{"product_id"},
		),

		bulkRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bulk_rows_total",
				Help:      "Bulk registration rows by outcome",
			},
			[]string{"status"},
		),

		unallocatedSurplusTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "unallocated_surplus_units_total",
				Help:      "Units registered for a product with no active task to absorb them",
			},
			[]string{"product_id"},
		),
	}
}

// Register registers all production metrics with the Prometheus registry
func (c *ProductionMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.transitionsTotal,
		c.registrationsTotal,
		c.qualityUnitsTotal,
		c.correctedUnitsTotal,
		c.overproductionTotal,
		c.bulkRowsTotal,
		c.unallocatedSurplusTotal,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordTransition counts a status change
func (c *ProductionMetricsCollector) RecordTransition(from, to string) {
	if from == to {
		return
	}
	c.transitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordRegistration counts a registration and the units it moved
func (c *ProductionMetricsCollector) RecordRegistration(productID string, operation string, qualityDelta int, overproduction int) {
	c.registrationsTotal.WithLabelValues(operation).Inc()
	switch {
	case qualityDelta > 0:
		c.qualityUnitsTotal.WithLabelValues(productID).Add(float64(qualityDelta))
	case qualityDelta < 0:
		c.correctedUnitsTotal.WithLabelValues(productID).Add(float64(-qualityDelta))
	}
	if overproduction > 0 {
		c.overproductionTotal.WithLabelValues(productID).Add(float64(overproduction))
	}
}

// RecordBulkRow counts one bulk row outcome
func (c *ProductionMetricsCollector) RecordBulkRow(status string) {
	c.bulkRowsTotal.WithLabelValues(status).Inc()
}

// RecordUnallocatedSurplus counts surplus units with no task
func (c *ProductionMetricsCollector) RecordUnallocatedSurplus(productID string, units int) {
	if units <= 0 {
		return
	}
	c.unallocatedSurplusTotal.WithLabelValues(productID).Add(float64(units))
	c.overproductionTotal.WithLabelValues(productID).Add(float64(units))
}
