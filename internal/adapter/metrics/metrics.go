package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AnalyzerMetrics holds all Prometheus metrics for the analyzer service.
type AnalyzerMetrics struct {
	SessionsTotal    *prometheus.CounterVec
	EventsDecoded    prometheus.Counter
	RecordsDropped   prometheus.Counter
	AnalyzeDuration  prometheus.Histogram
	ScoringRunsTotal *prometheus.CounterVec
	DetectorFailures *prometheus.CounterVec
	QueueSize        prometheus.Gauge
}

// NewAnalyzerMetrics initializes and registers the Prometheus metrics.
func NewAnalyzerMetrics() *AnalyzerMetrics {
	return &AnalyzerMetrics{
		SessionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "replaysight",
			Subsystem: "analyze",
			Name:      "sessions_total",
			Help:      "Total number of analyzed sessions by status.",
		}, []string{"status"}), // status: ok, error_parse, empty
		EventsDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "replaysight",
			Subsystem: "analyze",
			Name:      "events_decoded_total",
			Help:      "Total number of normalized replay events produced by the decoder.",
		}),
		RecordsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "replaysight",
			Subsystem: "analyze",
			Name:      "records_dropped_total",
			Help:      "Total number of raw records dropped as undecodable.",
		}),
		AnalyzeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "replaysight",
			Subsystem: "analyze",
			Name:      "session_duration_seconds",
			Help:      "Wall time spent analyzing one session.",
			Buckets:   prometheus.DefBuckets,
		}),
		ScoringRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "replaysight",
			Subsystem: "scoring",
			Name:      "runs_total",
			Help:      "Total number of scoring runs by status.",
		}, []string{"status"}), // status: ok, partial
		DetectorFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "replaysight",
			Subsystem: "scoring",
			Name:      "detector_failures_total",
			Help:      "Total number of detector errors by detector name.",
		}, []string{"detector"}),
		QueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "replaysight",
			Subsystem: "scoring",
			Name:      "queue_size",
			Help:      "Number of users in the most recently built priority queue.",
		}),
	}
}
