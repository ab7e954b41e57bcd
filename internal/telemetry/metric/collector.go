package metric

import "github.com/prometheus/client_golang/prometheus"

// Sizer reports the number of stored entries.
type Sizer interface {
	Len() int
}

// Collector exposes store statistics at scrape time.
type Collector struct {
	store Sizer
	keys  *prometheus.Desc
}

// NewCollector creates a new store statistics collector.
func NewCollector(store Sizer) *Collector {
	return &Collector{
		store: store,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Number of stored entries, including expired ones not yet accessed.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.store.Len()))
}
