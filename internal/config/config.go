package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Task      TaskConfig      `mapstructure:"task" validate:"required"`
	Notify    NotifyConfig    `mapstructure:"notify" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// AllowedOrigin is sent as Access-Control-Allow-Origin
	AllowedOrigin string `mapstructure:"allowed_origin" validate:"required"`

	// Environment is reported by the health endpoint
	Environment string `mapstructure:"environment" validate:"required"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// TaskConfig controls the dispatcher, its worker pool and the simulated executor.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`

	// QueueSize caps pending tasks; zero means unbounded
	QueueSize   int `mapstructure:"queue_size" validate:"gte=0"`
	HistorySize int `mapstructure:"history_size" validate:"gt=0"`

	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0,lte=200ms"`

	BaseDelay         time.Duration `mapstructure:"base_delay" validate:"gte=0"`
	MinDelay          time.Duration `mapstructure:"min_delay" validate:"gte=0"`
	ReferencePriority int           `mapstructure:"reference_priority" validate:"gt=0"`
	ScaleByPriority   bool          `mapstructure:"scale_by_priority"`
}

// NotifyConfig controls push delivery to WebSocket subscribers.
type NotifyConfig struct {
	ClientBuffer int           `mapstructure:"client_buffer" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	PingInterval time.Duration `mapstructure:"ping_interval" validate:"gt=0"`
}

// RateLimitConfig throttles task submission. A zero rate disables the limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}
