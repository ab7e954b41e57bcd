// Package metric provides Prometheus metrics for tinykv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, server event recording and HTTP handler
//   - collector.go: Custom collector for store statistics
//
// Metrics include:
//
//   - Command counters and latency histograms
//   - Connection gauges and counters
//   - Passive expiry and protocol error counters
//   - Stored key count
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
