package crs

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestNormalize_TargetPassthrough(t *testing.T) {
	p := geom.NewPointFlat(geom.XY, []float64{-0.1367, 51.5133})

	out, err := Normalize(p, Target)
	require.NoError(t, err)

	// Same geometry, identical coordinates.
	assert.Same(t, geom.T(p), out)
	assert.Equal(t, []float64{-0.1367, 51.5133}, out.FlatCoords())
}

func TestNormalize_Idempotent(t *testing.T) {
	p := geom.NewPointFlat(geom.XY, []float64{-0.1367, 51.5133})

	once, err := Normalize(p, Target)
	require.NoError(t, err)
	twice, err := Normalize(once, Target)
	require.NoError(t, err)

	assert.InDelta(t, once.FlatCoords()[0], twice.FlatCoords()[0], 1e-9)
	assert.InDelta(t, once.FlatCoords()[1], twice.FlatCoords()[1], 1e-9)
}

func TestNormalize_WebMercatorPoint(t *testing.T) {
	// Broad Street pump, projected into EPSG:3857.
	lon, lat := -0.13667, 51.51334
	x := lon * math.Pi / 180 * earthRadiusM
	y := earthRadiusM * math.Log(math.Tan(math.Pi/4+lat*math.Pi/180/2))

	p := geom.NewPointFlat(geom.XY, []float64{x, y})
	out, err := Normalize(p, WebMercator)
	require.NoError(t, err)

	assert.InDelta(t, lon, out.FlatCoords()[0], 1e-9)
	assert.InDelta(t, lat, out.FlatCoords()[1], 1e-9)

	// Input untouched.
	assert.Equal(t, []float64{x, y}, p.FlatCoords())
}

func TestNormalize_WebMercatorPolygon(t *testing.T) {
	ring := []float64{0, 0, 111319.49, 0, 111319.49, 111325.14, 0, 0}
	poly := geom.NewPolygonFlat(geom.XY, ring, []int{len(ring)})

	out, err := Normalize(poly, WebMercator)
	require.NoError(t, err)

	mp, ok := out.(*geom.Polygon)
	require.True(t, ok)
	assert.InDelta(t, 1.0, mp.FlatCoords()[2], 1e-4) // ~1 degree lon
}

func TestNormalize_UnknownSystem(t *testing.T) {
	p := geom.NewPointFlat(geom.XY, []float64{0, 0})

	_, err := Normalize(p, "EPSG:27700")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProjection))
	assert.Contains(t, err.Error(), "unrecognized")
}

func TestNormalize_OutOfBounds(t *testing.T) {
	p := geom.NewPointFlat(geom.XY, []float64{-200, 51.5})

	_, err := Normalize(p, Target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProjection))
}

func TestNormalize_NonFinite(t *testing.T) {
	p := geom.NewPointFlat(geom.XY, []float64{math.NaN(), 51.5})

	_, err := Normalize(p, Target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProjection))
}
