// Package observability holds the Prometheus instrumentation for the
// dashboard: render outcomes, dataset loads, and cache behavior.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges.
type Metrics struct {
	Renders        *prometheus.CounterVec // labels: outcome={ok,config_error,load_error,projection_error}
	RenderDuration prometheus.Histogram

	DatasetLoads        prometheus.Counter
	DatasetLoadDuration prometheus.Histogram
	DatasetCache        *prometheus.CounterVec // labels: result={hit,miss}
	DatasetRecords      *prometheus.GaugeVec   // labels: layer={deaths,pumps,areas}

	TileFetches *prometheus.CounterVec // labels: basemap, result={cache,upstream,error}
}

// NewMetrics creates and registers all dashboard metrics with the
// default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Renders,
		m.RenderDuration,
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetCache,
		m.DatasetRecords,
		m.TileFetches,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// parallel tests avoid "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "broadstreet",
			Name:      "renders_total",
			Help:      "Map view compositions by outcome.",
		}, []string{"outcome"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "broadstreet",
			Name:      "render_duration_seconds",
			Help:      "Duration of a full compose cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		DatasetLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "broadstreet",
			Name:      "dataset_loads_total",
			Help:      "Full dataset loads from the raw sources.",
		}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "broadstreet",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a full source read and normalization.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		DatasetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "broadstreet",
			Name:      "dataset_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		DatasetRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "broadstreet",
			Name:      "dataset_records",
			Help:      "Loaded record count per layer.",
		}, []string{"layer"}),
		TileFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "broadstreet",
			Name:      "tile_fetches_total",
			Help:      "Basemap tile requests by basemap and result.",
		}, []string{"basemap", "result"}),
	}
}
