package config

import "time"

// ServerConfig holds the REST server configuration
type ServerConfig struct {
	// Listen address (host:port)
	Address string `mapstructure:"address" validate:"required"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}

// HealthConfig holds the gRPC health probe configuration
type HealthConfig struct {
	// gRPC listen address; empty disables the probe server
	Address string `mapstructure:"address"`
}

// AuthConfig holds bearer token validation settings
type AuthConfig struct {
	// HMAC secret used to verify tokens
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=16"`

	// Expected token issuer; empty accepts any issuer
	Issuer string `mapstructure:"issuer"`

	// Disabled skips authentication entirely (local development only)
	Disabled bool `mapstructure:"disabled"`
}
