package api

import (
	"log/slog"
	"net/http"

	"github.com/opslake/logship/internal/adapter/api/handler"
	"github.com/opslake/logship/internal/adapter/api/middleware"
	"github.com/opslake/logship/internal/adapter/metrics"
	"github.com/opslake/logship/internal/domain"
	"github.com/opslake/logship/internal/pkg/config"
	"github.com/opslake/logship/internal/usecase"
)

// NewRouter creates and configures the main HTTP router for the ingest
// service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	apiKeyRepo domain.APIKeyRepository,
	ingestUseCase *usecase.IngestLogsUseCase,
	m *metrics.Metrics,
) http.Handler {
	mux := http.NewServeMux()

	ingestHandler := handler.NewIngestHandler(ingestUseCase, logger, m, cfg.MaxBodySize)
	authMiddleware := middleware.Auth(apiKeyRepo, logger)

	mux.Handle("POST /ingest", authMiddleware(ingestHandler))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

// NewAdminRouter creates the router for the read-only monitoring endpoints
// served on the admin listener.
func NewAdminRouter(
	rate *usecase.RateTracker,
	statusRepo domain.StatusRepository,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	statsHandler := handler.NewStatsHandler(rate, statusRepo, logger)
	mux.HandleFunc("GET /stats", statsHandler.Rate)
	mux.HandleFunc("GET /status", statsHandler.RunStatus)

	return mux
}
