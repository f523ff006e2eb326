// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GRPCServerHandlingSeconds is a histogram for gRPC server request latencies
	GRPCServerHandlingSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grpc_server_handling_seconds",
			Help:    "Histogram of response latency (seconds) of gRPC that had been application-level handled by the server.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "code"},
	)

	// CollectionSize is a histogram of conditioning collection lengths
	CollectionSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enhance_collection_size",
			Help:    "Histogram of the number of conditioning entries per pipeline invocation.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		},
	)

	// EntriesTotal counts conditioning entries that completed the pipeline
	EntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enhance_entries_total",
			Help: "Total number of conditioning entries processed by the pipeline.",
		},
	)

	// StageLatencySeconds is a histogram for per-stage pipeline latency
	StageLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enhance_stage_latency_seconds",
			Help:    "Histogram of pipeline stage latency (seconds) per entry.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	// CacheRequestsTotal counts result cache lookups by outcome
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enhance_cache_requests_total",
			Help: "Result cache lookups partitioned by outcome (hit, miss, error).",
		},
		[]string{"result"},
	)

	// HealthStatus is a gauge indicating the health status of the service
	HealthStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "health_status",
			Help: "Health status of the service (1 = healthy, 0 = unhealthy).",
		},
	)
)

// RecordGRPCLatency records the latency of a gRPC method call
func RecordGRPCLatency(method, code string, seconds float64) {
	GRPCServerHandlingSeconds.WithLabelValues(method, code).Observe(seconds)
}

// RecordCollectionSize records the number of entries in one invocation
func RecordCollectionSize(size int) {
	CollectionSize.Observe(float64(size))
}

// RecordEntry counts one processed entry
func RecordEntry() {
	EntriesTotal.Inc()
}

// RecordStageLatency records the latency of one pipeline stage
func RecordStageLatency(stage string, seconds float64) {
	StageLatencySeconds.WithLabelValues(stage).Observe(seconds)
}

// RecordCacheResult records a cache lookup outcome: "hit", "miss" or "error"
func RecordCacheResult(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// SetHealthy sets the health status to healthy
func SetHealthy() {
	HealthStatus.Set(1)
}

// SetUnhealthy sets the health status to unhealthy
func SetUnhealthy() {
	HealthStatus.Set(0)
}
