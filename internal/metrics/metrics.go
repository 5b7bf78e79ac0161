// Package metrics provides Prometheus metrics for the registry service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports registry metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	searchRequests  *prometheus.CounterVec
	searchLatency   *prometheus.HistogramVec
	embeddingCalls  *prometheus.CounterVec
	reindexedItems  prometheus.Counter
	reindexFailures prometheus.Counter
}

// NewExporter creates a new metrics exporter with its own registry.
func NewExporter() *Exporter {
	registry := prometheus.NewRegistry()

	e := &Exporter{registry: registry}

	e.searchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registry",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of search requests by resolving stage",
		},
		[]string{"stage"},
	)

	e.searchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "registry",
			Subsystem: "search",
			Name:      "latency_seconds",
			Help:      "Search request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"stage"},
	)

	e.embeddingCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registry",
			Subsystem: "embedding",
			Name:      "calls_total",
			Help:      "Total number of embedding API calls",
		},
		[]string{"status"},
	)

	e.reindexedItems = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "registry",
			Subsystem: "index",
			Name:      "reindexed_items_total",
			Help:      "Total number of items processed by reindex runs",
		},
	)

	e.reindexFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "registry",
			Subsystem: "index",
			Name:      "reindex_failures_total",
			Help:      "Total number of items that failed to embed during reindex",
		},
	)

	registry.MustRegister(
		e.searchRequests,
		e.searchLatency,
		e.embeddingCalls,
		e.reindexedItems,
		e.reindexFailures,
	)

	return e
}

// ObserveSearch records a completed search request and which stage resolved it.
func (e *Exporter) ObserveSearch(stage string, seconds float64) {
	e.searchRequests.WithLabelValues(stage).Inc()
	e.searchLatency.WithLabelValues(stage).Observe(seconds)
}

// ObserveEmbeddingCall records the outcome of one embedding API call.
func (e *Exporter) ObserveEmbeddingCall(status string) {
	e.embeddingCalls.WithLabelValues(status).Inc()
}

// ObserveReindex records one reindex pass over the catalog.
func (e *Exporter) ObserveReindex(total, embedded int) {
	e.reindexedItems.Add(float64(total))
	e.reindexFailures.Add(float64(total - embedded))
}

// Handler returns an http.Handler serving the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
