package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	web "hackathon/internal/adapters/http"
	"hackathon/internal/app"
	"hackathon/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	app.SetupLogging(env)

	a, err := app.New(env)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.SeedAdmin(ctx); err != nil {
		return err
	}

	workersStop := make(chan struct{})
	a.StartWorkers(workersStop)
	defer close(workersStop)

	handler, err := web.NewMux(env.StaticDir, a.Stores, a.Services())
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              env.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_started", "version", version, "addr", env.Addr, "event", a.Event.Name, "env", env.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("server_stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	slog.Info("server_stopped")
	return nil
}
