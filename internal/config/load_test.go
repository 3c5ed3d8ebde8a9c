package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for the duration of the test.
// Empty values are treated as unset by the loader.
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for name, value := range envVars {
		t.Setenv(name, value)
	}
}

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT",
		"THREADFLOW_SERVER_PORT",
		"THREADFLOW_SERVER_LOG_LEVEL",
		"THREADFLOW_SERVER_ALLOWED_ORIGIN",
		"THREADFLOW_SERVER_ENVIRONMENT",
		"THREADFLOW_TASK_WORKER_COUNT",
		"THREADFLOW_TASK_QUEUE_SIZE",
		"THREADFLOW_TASK_POLL_INTERVAL",
		"THREADFLOW_TASK_BASE_DELAY",
		"THREADFLOW_TASK_SCALE_BY_PRIORITY",
		"THREADFLOW_NOTIFY_CLIENT_BUFFER",
		"THREADFLOW_RATE_LIMIT_REQUESTS_PER_SECOND",
	} {
		t.Setenv(name, "")
	}
}

// chdir switches the working directory for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(original)
	})
}

// TestLoadDefaults verifies that Load falls back to the documented defaults
// when nothing is configured.
func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, 8081, cfg.Server.Port, "Default server port should be 8081")
	assert.Equal(t, "info", cfg.Server.LogLevel, "Default log level should be 'info'")
	assert.Equal(t, 2, cfg.Task.WorkerCount)
	assert.Equal(t, 0, cfg.Task.QueueSize)
	assert.Equal(t, 100, cfg.Task.HistorySize)
	assert.Equal(t, 100*time.Millisecond, cfg.Task.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Task.BaseDelay)
	assert.False(t, cfg.Task.ScaleByPriority)
}

// TestLoadFromEnv verifies that environment variables override defaults.
func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	setupEnv(t, map[string]string{
		"THREADFLOW_SERVER_PORT":                    "9090",
		"THREADFLOW_SERVER_LOG_LEVEL":               "debug",
		"THREADFLOW_SERVER_ENVIRONMENT":             "production",
		"THREADFLOW_TASK_WORKER_COUNT":              "8",
		"THREADFLOW_TASK_QUEUE_SIZE":                "500",
		"THREADFLOW_TASK_POLL_INTERVAL":             "50ms",
		"THREADFLOW_TASK_BASE_DELAY":                "1.5s",
		"THREADFLOW_TASK_SCALE_BY_PRIORITY":         "true",
		"THREADFLOW_NOTIFY_CLIENT_BUFFER":           "64",
		"THREADFLOW_RATE_LIMIT_REQUESTS_PER_SECOND": "2.5",
	})

	cfg, err := Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "production", cfg.Server.Environment)
	assert.Equal(t, 8, cfg.Task.WorkerCount)
	assert.Equal(t, 500, cfg.Task.QueueSize)
	assert.Equal(t, 50*time.Millisecond, cfg.Task.PollInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Task.BaseDelay)
	assert.True(t, cfg.Task.ScaleByPriority)
	assert.Equal(t, 64, cfg.Notify.ClientBuffer)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.0001)
}

// TestLoadPortEnv verifies the bare PORT variable and its precedence.
func TestLoadPortEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	t.Run("PORT alone", func(t *testing.T) {
		t.Setenv("PORT", "7000")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 7000, cfg.Server.Port)
	})

	t.Run("prefixed variable wins", func(t *testing.T) {
		t.Setenv("PORT", "7000")
		t.Setenv("THREADFLOW_SERVER_PORT", "7001")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 7001, cfg.Server.Port)
	})
}

// TestLoadFromFile verifies YAML values and that env still takes precedence.
func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`server:
  port: 9100
  log_level: warn
task:
  worker_count: 4
  history_size: 10
  min_delay: 10ms
notify:
  write_timeout: 2s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	setupEnv(t, map[string]string{"THREADFLOW_SERVER_PORT": "9200"})

	cfg, err := LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port, "env must override the file")
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, 4, cfg.Task.WorkerCount)
	assert.Equal(t, 10, cfg.Task.HistorySize)
	assert.Equal(t, 10*time.Millisecond, cfg.Task.MinDelay)
	assert.Equal(t, 2*time.Second, cfg.Notify.WriteTimeout)
	assert.Equal(t, 16, cfg.Notify.ClientBuffer, "unset keys keep their defaults")
}

// TestLoadSearchesWorkingDirectory verifies that config.yaml is picked up
// without an explicit path.
func TestLoadSearchesWorkingDirectory(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("task:\n  worker_count: 6\n"), 0o600))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Task.WorkerCount)
}

func TestLoadFromFile_Missing(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// TestLoadValidationErrors verifies that the Load function correctly validates the configuration.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "Invalid port number",
			envVars: map[string]string{"THREADFLOW_SERVER_PORT": "999999"},
		},
		{
			name:    "Invalid log level",
			envVars: map[string]string{"THREADFLOW_SERVER_LOG_LEVEL": "invalid-level"},
		},
		{
			name:    "Zero workers",
			envVars: map[string]string{"THREADFLOW_TASK_WORKER_COUNT": "0"},
		},
		{
			name:    "Negative queue size",
			envVars: map[string]string{"THREADFLOW_TASK_QUEUE_SIZE": "-1"},
		},
		{
			name:    "Poll interval above bound",
			envVars: map[string]string{"THREADFLOW_TASK_POLL_INTERVAL": "1s"},
		},
		{
			name:    "Zero client buffer",
			envVars: map[string]string{"THREADFLOW_NOTIFY_CLIENT_BUFFER": "0"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			chdir(t, t.TempDir())
			setupEnv(t, tc.envVars)

			cfg, err := Load()

			require.Error(t, err, "Load() should return an error with invalid configuration")
			assert.Contains(t, err.Error(), "config validation failed")
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, Validate(&cfg))

	cfg.Server.AllowedOrigin = ""
	assert.ErrorContains(t, Validate(&cfg), "AllowedOrigin")
}
