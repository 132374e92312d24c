// Package geodata loads the outbreak point and boundary sources into a
// normalized in-memory dataset.
package geodata

import (
	"github.com/twpayne/go-geom"
)

// Layer names, in render order.
const (
	LayerDeaths = "deaths"
	LayerPumps  = "pumps"
	LayerAreas  = "areas"
)

// Field is a single named attribute value. Fields keep the column
// order of the source table or DBF, so downstream tooltips are stable.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PointRecord is one observation: a WGS84 point plus its attribute
// fields. Records are immutable once loaded.
type PointRecord struct {
	Geom   *geom.Point
	Fields []Field
}

// Lon returns the longitude in degrees.
func (r PointRecord) Lon() float64 { return r.Geom.FlatCoords()[0] }

// Lat returns the latitude in degrees.
func (r PointRecord) Lat() float64 { return r.Geom.FlatCoords()[1] }

// AreaRecord is a named affected zone: a WGS84 polygon boundary plus
// its attribute fields.
type AreaRecord struct {
	Geom   *geom.MultiPolygon
	Fields []Field
}

// Dataset holds every loaded layer in a single reference system.
type Dataset struct {
	Deaths []PointRecord
	Pumps  []PointRecord
	Areas  []AreaRecord
}

// DeathCount returns the number of death point records.
func (d *Dataset) DeathCount() int { return len(d.Deaths) }

// PumpCount returns the number of water pump records.
func (d *Dataset) PumpCount() int { return len(d.Pumps) }

// Points returns the point records for a named point layer, or nil
// for the area layer and unknown names.
func (d *Dataset) Points(layer string) []PointRecord {
	switch layer {
	case LayerDeaths:
		return d.Deaths
	case LayerPumps:
		return d.Pumps
	default:
		return nil
	}
}
