package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Run serves HTTP until a termination signal arrives or the listener fails.
// The returned error is nil on a signal.
func (a *App) Run() error {
	l, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.httpServer.Addr, err)
	}
	slog.Info("http server listening", "address", l.Addr().String())

	sigCtx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	select {
	case err := <-a.Serve(l):
		return err
	case <-sigCtx.Done():
		slog.Info("termination signal received")
		return nil
	}
}

// Serve runs the HTTP server on l. The channel yields the serve error, if any,
// and is closed when the server stops.
func (a *App) Serve(l net.Listener) <-chan error {
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		if err := a.httpServer.Serve(l); !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	return errs
}

// Stop drains in-flight requests and background tasks, then closes resources.
func (a *App) Stop(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown http server", "error", err)
	}

	stats := a.goroutine.Stats()
	slog.InfoContext(ctx, "waiting for background tasks", "running", stats.Running)
	if err := a.goroutine.Wait(ctx); err != nil {
		slog.ErrorContext(ctx, "background tasks did not finish", "error", err)
	}

	if a.cancel != nil {
		a.cancel()
	}

	a.closeResources(ctx)
	slog.InfoContext(ctx, "application stopped")
}
