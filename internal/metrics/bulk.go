package metrics

import "github.com/prometheus/client_golang/prometheus"

// Bulk load metrics.
var (
	BulkItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_items_total",
			Help:      "Bulk load items by outcome",
		},
		[]string{"outcome"}, // ok|failed|degraded
	)

	BulkDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bulk_duration_seconds",
			Help:      "Bulk load duration including embedding",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)
)
