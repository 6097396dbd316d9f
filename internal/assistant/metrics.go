package assistant

import "github.com/prometheus/client_golang/prometheus"

var classificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cloudweave",
		Subsystem: "assistant",
		Name:      "classifications_total",
		Help:      "Assistant answers by classification (actionable, informational, error)",
	},
	[]string{"class"},
)

func init() {
	prometheus.MustRegister(classificationsTotal)
}

func recordClassificationMetric(class string) {
	classificationsTotal.WithLabelValues(class).Inc()
}
