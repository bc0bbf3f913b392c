// Command orgmatrixd serves the organization collection and the course
// assignment matrix over HTTP, snapshotting state to the configured backend.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orgmatrix/internal/api"
	"orgmatrix/internal/config"
	"orgmatrix/internal/core"
	"orgmatrix/internal/logging"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "error").Error("load config", "error", err.Error())
		return err
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx := context.Background()
	store, err := core.OpenPersistentStore(ctx, cfg.Storage())
	if err != nil {
		logger.Error("open store", "driver", cfg.StorageDriver, "error", err.Error())
		return err
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		logger.Error("register metrics", "error", err.Error())
		return err
	}

	svc := core.NewService(store,
		core.WithLogger(logger),
		core.WithMetricsRecorder(recorder),
	)
	seeded, err := svc.EnsureSeed(ctx)
	if err != nil {
		logger.Error("seed store", "error", err.Error())
		return err
	}
	if seeded {
		logger.Info("seeded empty store", "organizations", len(svc.ListOrganizations()))
	}

	handler := api.NewServer(svc,
		api.WithLogger(logger),
		api.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	).Routes()

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ListenAddr, "driver", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server error", "error", err.Error())
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err.Error())
		return err
	}
	logger.Info("server stopped")
	return nil
}
