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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opslake/logship/internal/adapter/api"
	"github.com/opslake/logship/internal/adapter/api/middleware"
	"github.com/opslake/logship/internal/adapter/compress"
	"github.com/opslake/logship/internal/adapter/metrics"
	"github.com/opslake/logship/internal/adapter/repository/apikey"
	"github.com/opslake/logship/internal/adapter/repository/bucket"
	"github.com/opslake/logship/internal/adapter/repository/status"
	s3store "github.com/opslake/logship/internal/adapter/storage/s3"
	"github.com/opslake/logship/internal/pkg/config"
	"github.com/opslake/logship/internal/pkg/logger"
	"github.com/opslake/logship/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	m := metrics.New()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Repositories ---
	bucketRepo, err := bucket.NewRepository(cfg.BasePath, log)
	if err != nil {
		log.Error("failed to initialize bucket repository", "error", err)
		os.Exit(1)
	}
	statusRepo, err := status.NewRepository(cfg.BasePath)
	if err != nil {
		log.Error("failed to initialize status repository", "error", err)
		os.Exit(1)
	}
	apiKeyRepo := apikey.NewRepository(cfg.APIKeys)

	store, err := s3store.New(ctx, cfg.S3Bucket, s3store.Options{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		PathStyle: cfg.S3ForcePathStyle,
	})
	if err != nil {
		log.Error("failed to initialize object store", "error", err)
		os.Exit(1)
	}

	// --- Use Cases ---
	rateTracker := usecase.NewRateTracker()
	ingestUseCase := usecase.NewIngestLogsUseCase(bucketRepo, rateTracker, log)
	shipUseCase := usecase.NewShipCycleUseCase(
		bucketRepo,
		store,
		statusRepo,
		compress.NewGzipCompressor(),
		log,
		cfg.S3KeyPrefix,
		cfg.UploadMaxRetries,
		cfg.UploadBackoff,
	)

	// --- Admin and Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.Handle("/", api.NewAdminRouter(rateTracker, statusRepo, log))

	adminServer := &http.Server{
		Addr:    cfg.AdminServerAddr,
		Handler: adminMux,
	}
	go func() {
		log.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Ingest Server ---
	ingestRouter := api.NewRouter(cfg, log, apiKeyRepo, ingestUseCase, m)
	ingestServer := &http.Server{
		Addr:         cfg.IngestServerAddr,
		Handler:      middleware.Logging(log)(ingestRouter),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	go func() {
		log.Info("starting ingest server", "addr", ingestServer.Addr)
		if err := ingestServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ingest server failed", "error", err)
			stop()
		}
	}()

	// --- Ship Cycle Loop ---
	go func() {
		ticker := time.NewTicker(cfg.CycleInterval)
		defer ticker.Stop()

		log.Info("ship cycle loop started", "interval", cfg.CycleInterval.String())
		for {
			select {
			case <-ticker.C:
				runCycle(ctx, shipUseCase, m, log)
			case <-ctx.Done():
				log.Info("context cancelled, stopping ship cycle loop")
				return
			}
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", "error", err)
	}
	if err := ingestServer.Shutdown(shutdownCtx); err != nil {
		log.Error("ingest server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}

// runCycle runs one ship cycle to completion. A cycle is never cancelled
// mid-flight; the shutdown context only stops the loop from scheduling the
// next one.
func runCycle(ctx context.Context, uc *usecase.ShipCycleUseCase, m *metrics.Metrics, log *slog.Logger) {
	m.CycleActive.Set(1)
	defer m.CycleActive.Set(0)

	err := uc.RunCycle(context.WithoutCancel(ctx))
	switch {
	case errors.Is(err, usecase.ErrCycleRunning):
		m.CyclesTotal.WithLabelValues("skipped").Inc()
	case err != nil:
		m.CyclesTotal.WithLabelValues("failed").Inc()
		log.Error("ship cycle failed", "error", err)
	default:
		m.CyclesTotal.WithLabelValues("success").Inc()
	}
}
