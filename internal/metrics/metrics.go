// Package metrics exposes the analysis service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service collectors registered on one registry.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	ParseFailures prometheus.Counter
	DatasetRows   prometheus.Gauge
}

// New registers the service collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qpcr",
			Name:      "analysis_runs_total",
			Help:      "Analysis pipeline runs by outcome.",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qpcr",
			Name:      "analysis_run_duration_seconds",
			Help:      "Duration of analysis pipeline runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		ParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "qpcr",
			Name:      "dataset_parse_failures_total",
			Help:      "Dataset uploads that failed to parse.",
		}),
		DatasetRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "qpcr",
			Name:      "dataset_rows",
			Help:      "Row count of the currently loaded dataset.",
		}),
	}
}
