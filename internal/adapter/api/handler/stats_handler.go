package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/opslake/logship/internal/domain"
	"github.com/opslake/logship/internal/usecase"
)

// StatsHandler serves the read-only monitoring endpoints: the current
// ingestion rate and the latest ship cycle status.
type StatsHandler struct {
	rate   *usecase.RateTracker
	status domain.StatusRepository
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(rate *usecase.RateTracker, status domain.StatusRepository, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		rate:   rate,
		status: status,
		logger: logger,
	}
}

// Rate responds with the ingestion rate over the last five minutes.
func (h *StatsHandler) Rate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]float64{"ingestion_rate_per_minute": h.rate.PerMinute(time.Now())}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode rate response", "error", err)
	}
}

// RunStatus responds with the persisted status of the latest ship cycle.
func (h *StatsHandler) RunStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.status.Read(r.Context())
	if err != nil {
		h.logger.Warn("no run status available", "error", err)
		http.Error(w, "No cycle has run yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		h.logger.Error("failed to encode status response", "error", err)
	}
}
