package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics, labelled by the protocol that served the query.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "questsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search queries by protocol and outcome",
		},
		[]string{"protocol", "outcome"}, // outcome: ok, invalid, unavailable, failed
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "questsearch",
			Name:      "search_request_duration_seconds",
			Help:      "Search query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"protocol", "filtered"},
	)

	SearchResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "questsearch",
			Name:      "search_results_returned",
			Help:      "Number of records returned per search page",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"protocol"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SearchResultsReturned)
	searchMetricsRegistered = true
}
