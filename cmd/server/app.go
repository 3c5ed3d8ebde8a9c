package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/threadflow/internal/config"
	"github.com/phrazzld/threadflow/internal/platform/wshub"
	"github.com/phrazzld/threadflow/internal/task"
)

// application holds the long-lived components of the server
type application struct {
	config *config.Config
	logger *slog.Logger

	dispatcher *task.Dispatcher
	hub        *wshub.Hub

	// unsubscribeHub detaches the hub from completion events
	unsubscribeHub func()

	startedAt time.Time
}

// newApplication wires the dispatcher and the WebSocket hub from
// configuration. Nothing runs until Run.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	executor := task.NewSimulatedExecutor(task.SimulatedExecutorConfig{
		BaseDelay:         cfg.Task.BaseDelay,
		ScaleByPriority:   cfg.Task.ScaleByPriority,
		ReferencePriority: cfg.Task.ReferencePriority,
		MinDelay:          cfg.Task.MinDelay,
	})

	dispatcher := task.NewDispatcher(task.DispatcherConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		HistorySize:  cfg.Task.HistorySize,
		PollInterval: cfg.Task.PollInterval,
	}, executor, logger)

	hub := wshub.NewHub(dispatcher, wshub.Config{
		ClientBuffer:  cfg.Notify.ClientBuffer,
		WriteTimeout:  cfg.Notify.WriteTimeout,
		PingInterval:  cfg.Notify.PingInterval,
		AllowedOrigin: cfg.Server.AllowedOrigin,
	}, logger)

	app := &application{
		config:         cfg,
		logger:         logger,
		dispatcher:     dispatcher,
		hub:            hub,
		unsubscribeHub: dispatcher.RegisterSink(hub),
		startedAt:      time.Now(),
	}

	logger.Info("Application initialized successfully",
		"worker_count", cfg.Task.WorkerCount,
		"history_size", cfg.Task.HistorySize)
	return app, nil
}

// Run starts the workers and serves HTTP until ctx is cancelled, then shuts
// everything down.
func (app *application) Run(ctx context.Context) error {
	app.dispatcher.Start()

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops components in dependency order: subscribers first, then
// the workers. It is called after the HTTP server has stopped.
func (app *application) cleanup() {
	app.unsubscribeHub()
	app.hub.Close()
	app.dispatcher.Stop()

	app.logger.Info("Application shutdown completed",
		"unprocessed_tasks", app.dispatcher.PendingCount())
}
