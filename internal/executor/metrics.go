package executor

import "github.com/prometheus/client_golang/prometheus"

var (
	executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudweave",
			Subsystem: "executor",
			Name:      "executions_total",
			Help:      "Total number of executed commands by kind and result",
		},
		[]string{"kind", "result"},
	)

	executionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cloudweave",
			Subsystem: "executor",
			Name:      "execution_duration_seconds",
			Help:      "Duration of command executions in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~6.8min
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(executionsTotal, executionDuration)
}

// recordExecutionMetric records a finished execution.
func recordExecutionMetric(kind, result string, duration float64) {
	executionsTotal.WithLabelValues(kind, result).Inc()
	executionDuration.WithLabelValues(kind).Observe(duration)
}
