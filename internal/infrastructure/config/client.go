package config

import "time"

// ClientConfig holds the CLI's REST client configuration
type ClientConfig struct {
	// Base URL of the shopfloor server API
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Bearer token sent with every request
	Token string `mapstructure:"token"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// Refresh interval of watch views
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}
