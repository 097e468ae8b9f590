package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion Prometheus metrics.
var (
	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "questsearch",
			Name:      "ingest_records_total",
			Help:      "Records processed by the ingestion pipeline",
		},
		[]string{"result"}, // inserted, failed, rejected
	)

	IngestBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "questsearch",
			Name:      "ingest_batches_total",
			Help:      "Ingestion batches by final status",
		},
		[]string{"status"}, // committed, failed
	)

	IngestRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "questsearch",
			Name:      "ingest_retry_passes_total",
			Help:      "Retry passes issued over failed records",
		},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers Prometheus ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestRecordsTotal)
	prometheus.MustRegister(IngestBatchesTotal)
	prometheus.MustRegister(IngestRetriesTotal)
	ingestMetricsRegistered = true
}
