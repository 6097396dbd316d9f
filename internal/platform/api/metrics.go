package api

import "github.com/prometheus/client_golang/prometheus"

var (
	apiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudweave",
			Subsystem: "api",
			Name:      "calls_total",
			Help:      "Total number of console backend calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cloudweave",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of console backend calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(apiCallsTotal, apiLatency)
}

// recordAPICallMetric records a backend call.
func recordAPICallMetric(operation, result string, latency float64) {
	apiCallsTotal.WithLabelValues(operation, result).Inc()
	apiLatency.WithLabelValues(operation).Observe(latency)
}
