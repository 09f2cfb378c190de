package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davidrzs/Timeboard/internal/app"
	"github.com/davidrzs/Timeboard/pkg/config"
	"github.com/davidrzs/Timeboard/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	logger.Info("starting timeboard worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	if cfg.IsProduction() {
		logCfg.Format = observability.LogFormatJSON
		logCfg.Output = os.Stdout
		logCfg.AddSource = true
	}
	if cfg.IsDevelopment() {
		logCfg.Level = observability.LogLevelDebug
	}
	logger = observability.NewLogger(logCfg)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := container.Reminders.Start(ctx); err != nil {
		logger.Error("failed to start reminder worker", "error", err)
		os.Exit(1)
	}
	defer container.Reminders.Stop()

	syncDone := make(chan struct{})
	if container.SyncWorker != nil {
		go func() {
			defer close(syncDone)
			if err := container.SyncWorker.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("sync worker stopped", "error", err)
			}
		}()
	} else {
		close(syncDone)
		logger.Info("no calendar provider configured, sync worker disabled")
	}

	if cfg.WorkerHealthAddr != "" {
		startHealthServer(ctx, cfg.WorkerHealthAddr, container, logger)
	}

	<-ctx.Done()
	if container.SyncWorker != nil {
		container.SyncWorker.Stop()
	}
	<-syncDone
	logger.Info("timeboard worker stopped")
}

func startHealthServer(ctx context.Context, addr string, container *app.Container, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		health := container.Health.GetOverallHealth(checkCtx)

		w.Header().Set("Content-Type", "application/json")
		if health.Status == observability.HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    health.Status,
			"checks":    health.Checks,
			"reminders": container.Reminders.IsRunning(),
			"sync":      container.SyncWorker != nil && container.SyncWorker.IsRunning(),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := container.Ping(checkCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
	})

	healthSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}
