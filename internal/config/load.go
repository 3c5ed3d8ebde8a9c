package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "THREADFLOW"

// Load configuration from environment variables and optionally a config.yaml
// in the working directory or ./config.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile behaves like Load but reads the given config file instead of
// searching for one. An empty path falls back to the search.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// PORT is the conventional deployment override for the listen port
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("error binding environment variable PORT: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every constraint declared on the Config struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8081,
			LogLevel:        "info",
			AllowedOrigin:   "*",
			Environment:     "development",
			ShutdownTimeout: 10 * time.Second,
		},
		Task: TaskConfig{
			WorkerCount:       2,
			QueueSize:         0,
			HistorySize:       100,
			PollInterval:      100 * time.Millisecond,
			BaseDelay:         2 * time.Second,
			MinDelay:          50 * time.Millisecond,
			ReferencePriority: 5,
			ScaleByPriority:   false,
		},
		Notify: NotifyConfig{
			ClientBuffer: 16,
			WriteTimeout: 5 * time.Second,
			PingInterval: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.allowed_origin", d.Server.AllowedOrigin)
	v.SetDefault("server.environment", d.Server.Environment)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("task.worker_count", d.Task.WorkerCount)
	v.SetDefault("task.queue_size", d.Task.QueueSize)
	v.SetDefault("task.history_size", d.Task.HistorySize)
	v.SetDefault("task.poll_interval", d.Task.PollInterval)
	v.SetDefault("task.base_delay", d.Task.BaseDelay)
	v.SetDefault("task.min_delay", d.Task.MinDelay)
	v.SetDefault("task.reference_priority", d.Task.ReferencePriority)
	v.SetDefault("task.scale_by_priority", d.Task.ScaleByPriority)

	v.SetDefault("notify.client_buffer", d.Notify.ClientBuffer)
	v.SetDefault("notify.write_timeout", d.Notify.WriteTimeout)
	v.SetDefault("notify.ping_interval", d.Notify.PingInterval)

	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
}
