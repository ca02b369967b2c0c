package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStoreMetrics() {
	r.DocumentsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "docgraph_documents_total",
			Help: "Number of documents held by the store",
		},
	)

	r.StoreOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgraph_store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"operation", "status"},
	)

	r.StoreOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docgraph_store_operation_duration_seconds",
			Help:    "Document store operation duration in seconds, including simulated latency",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.0},
		},
		[]string{"operation"},
	)
}
