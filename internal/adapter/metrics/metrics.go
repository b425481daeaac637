package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	LinesTotal       *prometheus.CounterVec
	BytesTotal       prometheus.Counter
	SubmissionsTotal *prometheus.CounterVec
	CyclesTotal      *prometheus.CounterVec
	CycleActive      prometheus.Gauge
}

// New initializes and registers the Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		LinesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logship",
			Subsystem: "ingest",
			Name:      "lines_total",
			Help:      "Total number of buffered log lines by status.",
		}, []string{"status"}), // status: accepted, error_buffer
		BytesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "logship",
			Subsystem: "ingest",
			Name:      "bytes_total",
			Help:      "Total number of bytes accepted for ingestion.",
		}),
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logship",
			Subsystem: "ingest",
			Name:      "submissions_total",
			Help:      "Total number of ingestion submissions by status.",
		}, []string{"status"}), // status: accepted, error_request, error_buffer
		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logship",
			Subsystem: "shipper",
			Name:      "cycles_total",
			Help:      "Total number of ship cycles by result.",
		}, []string{"result"}), // result: success, failed, skipped
		CycleActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "logship",
			Subsystem: "shipper",
			Name:      "cycle_active_gauge",
			Help:      "Indicates if a ship cycle is currently running (1 for active, 0 for idle).",
		}),
	}
}
