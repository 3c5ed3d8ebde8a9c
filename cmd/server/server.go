package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// startHTTPServer listens on the configured port and serves router until ctx
// is cancelled.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	addr := fmt.Sprintf(":%d", app.config.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		app.cleanup()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return app.serve(ctx, ln, router)
}

// serve runs the HTTP server on ln with graceful shutdown. When ctx is
// cancelled or the server fails, it stops accepting requests, waits for
// in-flight ones up to the shutdown timeout and then runs cleanup.
func (app *application) serve(ctx context.Context, ln net.Listener, router http.Handler) error {
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("Starting server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		app.cleanup()
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		app.logger.Info("Server shutdown completed")
		return nil
	})

	return g.Wait()
}
