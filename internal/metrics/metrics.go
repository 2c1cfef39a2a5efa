// Package metrics holds the Prometheus collectors of the service.
// Collectors are package variables; Register adds them to the default
// registry once.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shelfdex"

var registerOnce sync.Once

// Register registers every collector with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingCacheTotal,
			BulkItemsTotal,
			BulkDuration,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}
