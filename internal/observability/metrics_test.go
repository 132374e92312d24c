package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RenderOutcomes(t *testing.T) {
	m := NewMetricsForTesting()

	m.Renders.WithLabelValues("ok").Inc()
	m.Renders.WithLabelValues("ok").Inc()
	m.Renders.WithLabelValues("config_error").Inc()

	assert.InDelta(t, 2, testutil.ToFloat64(m.Renders.WithLabelValues("ok")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Renders.WithLabelValues("config_error")), 1e-9)
}

func TestMetrics_DatasetGauges(t *testing.T) {
	m := NewMetricsForTesting()

	m.DatasetRecords.WithLabelValues("deaths").Set(489)
	m.DatasetRecords.WithLabelValues("pumps").Set(8)

	assert.InDelta(t, 489, testutil.ToFloat64(m.DatasetRecords.WithLabelValues("deaths")), 1e-9)
	assert.InDelta(t, 8, testutil.ToFloat64(m.DatasetRecords.WithLabelValues("pumps")), 1e-9)
}

func TestMetrics_TileFetches(t *testing.T) {
	m := NewMetricsForTesting()

	m.TileFetches.WithLabelValues("osm", "cache").Inc()
	m.TileFetches.WithLabelValues("osm", "upstream").Inc()
	m.TileFetches.WithLabelValues("osm", "cache").Inc()

	assert.InDelta(t, 2, testutil.ToFloat64(m.TileFetches.WithLabelValues("osm", "cache")), 1e-9)
}
