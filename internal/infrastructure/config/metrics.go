package config

// MetricsConfig controls the Prometheus endpoint of the REST server
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Route on the REST server (default: /metrics)
	Path string `mapstructure:"path" validate:"omitempty,startswith=/"`

	// Histogram buckets for mediator request latency, in seconds
	DurationBuckets []float64 `mapstructure:"duration_buckets" validate:"omitempty,dive,gt=0"`
}
