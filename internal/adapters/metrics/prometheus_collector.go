package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "shopfloor"
	// Subsystem for production metrics
	subsystem = "production"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalProductionCollector is the singleton production metrics collector
	// Set by SetGlobalProductionCollector() when metrics are enabled
	globalProductionCollector ProductionMetricsRecorder
)

// ProductionMetricsRecorder defines the interface for recording production events
// This interface is used by application code to record metrics
type ProductionMetricsRecorder interface {
	RecordTransition(from, to string)
	RecordRegistration(productID string, operation string, qualityDelta int, overproduction int)
	RecordBulkRow(status string)
	RecordUnallocatedSurplus(productID string, units int)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalProductionCollector sets the global production metrics collector
func SetGlobalProductionCollector(collector ProductionMetricsRecorder) {
	globalProductionCollector = collector
}

// RecordTransition records a task status change globally
func RecordTransition(from, to string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordTransition(from, to)
	}
}

// RecordRegistration records a quantity registration globally
func RecordRegistration(productID string, operation string, qualityDelta int, overproduction int) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordRegistration(productID, operation, qualityDelta, overproduction)
	}
}

// RecordBulkRow records the outcome of one bulk registration row globally
func RecordBulkRow(status string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordBulkRow(status)
	}
}

// RecordUnallocatedSurplus records output no task could absorb
func RecordUnallocatedSurplus(productID string, units int) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordUnallocatedSurplus(productID, units)
	}
}
