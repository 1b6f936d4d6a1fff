package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and ingestion metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "productsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by retrieval type",
		},
		[]string{"retrieval_type", "status"},
	)

	SearchResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "productsearch",
			Name:      "search_results_returned",
			Help:      "Number of results returned per search request",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 255},
		},
		[]string{"retrieval_type"},
	)

	IngestedProductsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "productsearch",
			Name:      "ingested_products_total",
			Help:      "Total number of ingested products by outcome",
		},
		[]string{"outcome"}, // "indexed" / "skipped_invalid" / "skipped_encoding"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers retrieval and ingestion metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchResultsReturned)
	prometheus.MustRegister(IngestedProductsTotal)
	searchMetricsRegistered = true
}
