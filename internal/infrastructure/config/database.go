package config

import (
	"fmt"
	"time"
)

// DatabaseConfig selects the task store
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// Postgres connection URL; overrides the individual fields below
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// SQLite file, or ":memory:"
	Path string `mapstructure:"path"`

	// SQL statement logging: silent, error, warn or info
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=silent error warn info"`

	// Statements slower than this are logged as warnings
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig holds Postgres connection pool limits
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1,ltefield=MaxOpen"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// IsSQLite reports whether the store is SQLite
func (c DatabaseConfig) IsSQLite() bool {
	return c.Type == "sqlite"
}

// DSN returns the driver connection string
func (c DatabaseConfig) DSN() string {
	if c.IsSQLite() {
		if c.Path == "" {
			return ":memory:"
		}
		return c.Path
	}
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}
