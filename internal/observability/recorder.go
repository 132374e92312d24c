package observability

import (
	"time"
)

// Render outcome labels.
const (
	OutcomeOK              = "ok"
	OutcomeConfigError     = "config_error"
	OutcomeLoadError       = "load_error"
	OutcomeProjectionError = "projection_error"
	OutcomeInternalError   = "internal_error"
)

// ObserveRender records one compose cycle.
func (m *Metrics) ObserveRender(outcome string, d time.Duration) {
	m.Renders.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.RenderDuration.Observe(d.Seconds())
	}
}

// ObserveLoad records a full dataset load and the resulting record
// counts. Satisfies geodata.LoadObserver.
func (m *Metrics) ObserveLoad(d time.Duration, deaths, pumps, areas int) {
	m.DatasetLoads.Inc()
	m.DatasetLoadDuration.Observe(d.Seconds())
	m.DatasetRecords.WithLabelValues("deaths").Set(float64(deaths))
	m.DatasetRecords.WithLabelValues("pumps").Set(float64(pumps))
	m.DatasetRecords.WithLabelValues("areas").Set(float64(areas))
}

// ObserveCache records a dataset cache lookup. Satisfies
// geodata.LoadObserver.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.DatasetCache.WithLabelValues(result).Inc()
}

// ObserveTileFetch records one basemap tile request.
func (m *Metrics) ObserveTileFetch(basemap, result string) {
	m.TileFetches.WithLabelValues(basemap, result).Inc()
}
