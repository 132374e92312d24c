// Package crs normalizes geometry coordinates into a single reference
// system (WGS84 lat/lon degrees, EPSG:4326).
package crs

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Target is the reference system every geometry is normalized into.
const Target = "EPSG:4326"

// WebMercator is the projected system used by most slippy-map exports.
const WebMercator = "EPSG:3857"

// ErrProjection marks an unreprojectable geometry: an unrecognized
// source system or coordinates that fall outside valid lat/lon bounds.
var ErrProjection = eris.New("unreprojectable geometry")

const earthRadiusM = 6378137.0

// Normalize reprojects a geometry from the declared source system into
// the target system. Geometries already in the target system pass
// through unchanged.
func Normalize(g geom.T, source string) (geom.T, error) {
	switch source {
	case Target:
		if err := validateBounds(g); err != nil {
			return nil, err
		}
		return g, nil
	case WebMercator:
		out, err := reproject(g, mercatorToWGS84)
		if err != nil {
			return nil, err
		}
		if err := validateBounds(out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, eris.Wrapf(ErrProjection, "crs: unrecognized reference system %q", source)
	}
}

// mercatorToWGS84 inverts the spherical web mercator projection.
func mercatorToWGS84(x, y float64) (lon, lat float64) {
	lon = x / earthRadiusM * 180 / math.Pi
	lat = (2*math.Atan(math.Exp(y/earthRadiusM)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}

// reproject applies a coordinate transform to a copy of the geometry.
// The input is never modified.
func reproject(g geom.T, fn func(x, y float64) (float64, float64)) (geom.T, error) {
	flat := g.FlatCoords()
	stride := g.Stride()
	if stride < 2 {
		return nil, eris.Wrap(ErrProjection, "crs: geometry has no XY coordinates")
	}

	out := make([]float64, len(flat))
	copy(out, flat)
	for i := 0; i+1 < len(out); i += stride {
		out[i], out[i+1] = fn(out[i], out[i+1])
	}

	switch t := g.(type) {
	case *geom.Point:
		return geom.NewPointFlat(t.Layout(), out).SetSRID(4326), nil
	case *geom.MultiPoint:
		return geom.NewMultiPointFlat(t.Layout(), out).SetSRID(4326), nil
	case *geom.LineString:
		return geom.NewLineStringFlat(t.Layout(), out).SetSRID(4326), nil
	case *geom.Polygon:
		return geom.NewPolygonFlat(t.Layout(), out, t.Ends()).SetSRID(4326), nil
	case *geom.MultiPolygon:
		return geom.NewMultiPolygonFlat(t.Layout(), out, t.Endss()).SetSRID(4326), nil
	default:
		return nil, eris.Wrapf(ErrProjection, "crs: unsupported geometry type %T", g)
	}
}

// validateBounds checks that every coordinate is finite and within
// [-90,90] latitude and [-180,180] longitude.
func validateBounds(g geom.T) error {
	flat := g.FlatCoords()
	stride := g.Stride()
	if stride < 2 {
		return eris.Wrap(ErrProjection, "crs: geometry has no XY coordinates")
	}

	for i := 0; i+1 < len(flat); i += stride {
		lon, lat := flat[i], flat[i+1]
		if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
			return eris.Wrapf(ErrProjection, "crs: non-finite coordinate (%v, %v)", lon, lat)
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return eris.Wrapf(ErrProjection, "crs: coordinate (%v, %v) outside lat/lon bounds", lon, lat)
		}
	}
	return nil
}
