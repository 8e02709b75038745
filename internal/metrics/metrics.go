package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider call metrics shared by the embedding, completion and captioning
// adapters.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sopqa",
			Name:      "provider_requests_total",
			Help:      "Total number of model provider requests",
		},
		[]string{"operation", "model", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sopqa",
			Name:      "provider_request_duration_seconds",
			Help:      "Model provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "model"},
	)

	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sopqa",
			Name:      "provider_tokens_total",
			Help:      "Total provider tokens consumed",
		},
		[]string{"operation", "model", "type"},
	)
)

// Ingestion metrics.
var (
	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sopqa",
			Name:      "ingest_records_total",
			Help:      "Index records produced by ingestion runs",
		},
		[]string{"asset_type"},
	)

	IngestSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sopqa",
			Name:      "ingest_skipped_total",
			Help:      "Source files skipped during ingestion",
		},
		[]string{"reason"},
	)

	IngestBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sopqa",
			Name:      "ingest_batch_duration_seconds",
			Help:      "Index batch upload duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)

var registered bool

// Register registers all application metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderTokensTotal)
	prometheus.MustRegister(IngestRecordsTotal)
	prometheus.MustRegister(IngestSkippedTotal)
	prometheus.MustRegister(IngestBatchDuration)
	registered = true
}
