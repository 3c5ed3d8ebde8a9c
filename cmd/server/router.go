package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/threadflow/internal/api"
	apiMiddleware "github.com/phrazzld/threadflow/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewRequestLogger(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.CORS(app.config.Server.AllowedOrigin))

	taskHandler := api.NewTaskHandler(app.dispatcher, app.logger)
	healthHandler := api.NewHealthHandler(app.config.Server.Port, app.config.Server.Environment, app.startedAt)

	// Submission is the only write path, so it is the only one throttled
	r.With(apiMiddleware.RateLimit(
		app.config.RateLimit.RequestsPerSecond,
		app.config.RateLimit.Burst,
	)).Post("/submit", taskHandler.SubmitTask)

	r.Get("/tasks", taskHandler.PendingTasks)
	r.Get("/completed-tasks", taskHandler.CompletedTasks)
	r.Get("/failed-tasks", taskHandler.FailedTasks)
	r.Get("/stats", taskHandler.Stats)
	r.Get("/health", healthHandler.Health)

	// Push notifications
	r.Get("/ws", app.hub.ServeWS)

	return r
}
