package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/opslake/logship/internal/adapter/metrics"
	"github.com/opslake/logship/internal/usecase"
)

// DeviceIDHeader identifies the submitting device.
const DeviceIDHeader = "X-Device-ID"

// IngestHandler handles HTTP requests for log ingestion.
type IngestHandler struct {
	useCase     *usecase.IngestLogsUseCase
	logger      *slog.Logger
	metrics     *metrics.Metrics
	maxBodySize int64
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(uc *usecase.IngestLogsUseCase, logger *slog.Logger, m *metrics.Metrics, maxBodySize int64) *IngestHandler {
	return &IngestHandler{
		useCase:     uc,
		logger:      logger,
		metrics:     m,
		maxBodySize: maxBodySize,
	}
}

// ServeHTTP accepts a body of newline-separated raw log lines for the device
// named in the X-Device-ID header (or device_id query parameter) and
// responds with the ingest counts. The response is sent only after the
// submission is durably buffered.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get(DeviceIDHeader)
	if deviceID == "" {
		deviceID = r.URL.Query().Get("device_id")
	}
	if deviceID == "" {
		h.metrics.SubmissionsTotal.WithLabelValues("error_request").Inc()
		http.Error(w, "Bad request: device id required", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.metrics.SubmissionsTotal.WithLabelValues("error_request").Inc()
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.metrics.SubmissionsTotal.WithLabelValues("error_request").Inc()
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	result, err := h.useCase.Ingest(r.Context(), deviceID, string(body))
	if err != nil {
		h.logger.Error("failed to process ingest request", "device_id", deviceID, "error", err)
		h.metrics.SubmissionsTotal.WithLabelValues("error_buffer").Inc()
		h.metrics.LinesTotal.WithLabelValues("error_buffer").Inc()
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	h.metrics.LinesTotal.WithLabelValues("accepted").Add(float64(result.LinesProcessed))
	h.metrics.BytesTotal.Add(float64(len(body)))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("failed to encode ingest response", "error", err)
	}
}
