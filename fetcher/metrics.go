package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes used as the "outcome" label.
const (
	outcomeSuccess      = "success"
	outcomeNetworkError = "network_error"
	outcomeStatusError  = "status_error"
	outcomeWriteError   = "write_error"
	outcomeConfigError  = "config_error"
)

// runMetrics holds Prometheus metrics for export runs.
type runMetrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec   // By outcome
	fetchDuration *prometheus.HistogramVec // By format
	responseBytes prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

// newRunMetrics creates a private registry so metrics can be flushed to a
// textfile without dragging in the default process collectors.
func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),

		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparqlexport",
			Name:      "runs_total",
			Help:      "Total number of export runs by outcome",
		}, []string{"outcome"}),

		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sparqlexport",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent waiting for and reading the endpoint response",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"format"}),

		responseBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sparqlexport",
			Name:      "response_bytes",
			Help:      "Size of the last dataset written",
		}),

		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sparqlexport",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful export",
		}),
	}

	m.registry.MustRegister(m.runs, m.fetchDuration, m.responseBytes, m.lastSuccess)
	return m
}

// writeTextfile flushes the registry in node-exporter textfile format.
func (m *runMetrics) writeTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
