package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "shopfloor"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "shopfloor"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Database.SlowQueryThreshold == 0 {
		cfg.Database.SlowQueryThreshold = 500 * time.Millisecond
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// Client defaults
	if cfg.Client.BaseURL == "" {
		cfg.Client.BaseURL = "http://localhost:8080/api/v1"
	}
	if cfg.Client.Timeout == 0 {
		cfg.Client.Timeout = 30 * time.Second
	}
	if cfg.Client.PollInterval == 0 {
		cfg.Client.PollInterval = 30 * time.Second
	}
	if cfg.Client.RateLimit.Requests == 0 {
		cfg.Client.RateLimit.Requests = 5
	}
	if cfg.Client.RateLimit.Burst == 0 {
		cfg.Client.RateLimit.Burst = 10
	}

	// Planning defaults
	if cfg.Planning.HorizonDays == 0 {
		cfg.Planning.HorizonDays = 60
	}
	if cfg.Planning.SuggestionLimit == 0 {
		cfg.Planning.SuggestionLimit = 3
	}
	if cfg.Planning.DefaultDailyCapacity == 0 {
		cfg.Planning.DefaultDailyCapacity = 50
	}
	if cfg.Planning.HistoryLimit == 0 {
		cfg.Planning.HistoryLimit = 10
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
