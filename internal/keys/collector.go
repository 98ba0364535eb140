package keys

import "github.com/prometheus/client_golang/prometheus"

// NewPoolCollector exposes the pool partition sizes as gauges.
func NewPoolCollector(pool *Pool, namespace string) prometheus.Collector {
	if namespace == "" {
		namespace = "usergate"
	}
	return poolCollector{
		pool: pool,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keys", "pool_size"),
			"API keys in the pool by partition.",
			[]string{"partition"}, nil,
		),
	}
}

type poolCollector struct {
	pool *Pool
	desc *prometheus.Desc
}

func (c poolCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.desc }

func (c poolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.Stats()
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(stats.Available), PartitionAvailable.String())
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(stats.Used), PartitionUsed.String())
}
