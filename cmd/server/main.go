// Package main implements the entry point for the threadflow server, which
// accepts prioritized tasks over HTTP, runs them on a worker pool and reports
// completions by polling and over WebSocket.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/threadflow/internal/config"
	"github.com/phrazzld/threadflow/internal/platform/logger"
)

// main is the entry point for the threadflow server.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		appLogger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up structured logging.
// Returns the loaded config, the logger and any initialization error.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"environment", cfg.Server.Environment)
	l.Debug("Task configuration",
		"worker_count", cfg.Task.WorkerCount,
		"queue_size", cfg.Task.QueueSize,
		"history_size", cfg.Task.HistorySize,
		"base_delay", cfg.Task.BaseDelay,
		"scale_by_priority", cfg.Task.ScaleByPriority)

	return cfg, l, nil
}
