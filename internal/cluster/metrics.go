package cluster

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
)

var (
	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudweave",
			Subsystem: "cluster",
			Name:      "refresh_total",
			Help:      "Total number of cluster list refreshes by result",
		},
		[]string{"result"},
	)

	clustersGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cloudweave",
			Subsystem: "cluster",
			Name:      "clusters",
			Help:      "Number of clusters seen in the last refresh by provider",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(refreshTotal, clustersGauge)
}

func recordRefreshMetric(result string) {
	refreshTotal.WithLabelValues(result).Inc()
}

// recordClusterCounts sets the per-provider gauge, zeroing providers with no clusters.
func recordClusterCounts(clusters []Cluster) {
	counts := make(map[provider.Name]int, len(provider.Names))
	for _, n := range provider.Names {
		counts[n] = 0
	}
	for _, c := range clusters {
		counts[c.Provider]++
	}
	for n, count := range counts {
		clustersGauge.WithLabelValues(string(n)).Set(float64(count))
	}
}
