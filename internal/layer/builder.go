// Package layer turns a normalized dataset into renderable map layer
// primitives. Building is a pure projection: the dataset is never
// modified, and an enabled layer with zero records yields a valid
// empty layer.
package layer

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/epimaps/broadstreet/internal/geodata"
)

// ErrUnknownLayer marks a layer key outside the known catalog. A
// configuration mistake, not a data failure.
var ErrUnknownLayer = eris.New("unknown layer")

// Kind distinguishes point layers from polygon layers.
type Kind string

const (
	KindPoints   Kind = "points"
	KindPolygons Kind = "polygons"
)

// Marker is a single point feature with its fixed popup label.
type Marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

// Cluster is a representative marker for a group of nearby points.
// Members are carried for expansion on interaction; the underlying
// records are untouched.
type Cluster struct {
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Count   int      `json:"count"`
	Members []Marker `json:"members"`
}

// Shape is a styled polygon with its tooltip field pairs in source
// field order.
type Shape struct {
	Geom    *geom.MultiPolygon `json:"-"`
	Tooltip []geodata.Field    `json:"tooltip"`
}

// Layer is a named renderable group of features.
type Layer struct {
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	Clustered bool      `json:"clustered"`
	Style     Style     `json:"style"`
	Markers   []Marker  `json:"markers,omitempty"`
	Clusters  []Cluster `json:"clusters,omitempty"`
	Shapes    []Shape   `json:"shapes,omitempty"`
}

// builderFunc constructs one layer from the dataset.
type builderFunc func(ds *geodata.Dataset, cfg Config) Layer

// builders maps each known layer name to its construction function.
// Layer gating iterates the config list uniformly instead of
// branching per toggle.
var builders = map[string]builderFunc{
	geodata.LayerDeaths: buildPointLayer,
	geodata.LayerPumps:  buildPointLayer,
	geodata.LayerAreas:  buildAreaLayer,
}

// Build constructs the enabled layers in config order.
func Build(ds *geodata.Dataset, cfgs []Config) ([]Layer, error) {
	var out []Layer
	for _, cfg := range cfgs {
		build, ok := builders[cfg.Name]
		if !ok {
			return nil, eris.Wrapf(ErrUnknownLayer, "layer: unknown layer %q", cfg.Name)
		}
		if !cfg.Enabled {
			continue
		}
		out = append(out, build(ds, cfg))
	}
	return out, nil
}

func buildPointLayer(ds *geodata.Dataset, cfg Config) Layer {
	records := ds.Points(cfg.Name)
	style := ResolveStyle(cfg)

	markers := make([]Marker, 0, len(records))
	for _, rec := range records {
		markers = append(markers, Marker{
			Lat:   rec.Lat(),
			Lon:   rec.Lon(),
			Label: cfg.Label,
		})
	}

	l := Layer{
		Name:      cfg.Name,
		Kind:      KindPoints,
		Clustered: cfg.Cluster,
		Style:     style,
	}
	if cfg.Cluster {
		l.Clusters = clusterMarkers(markers, clusterCellDegrees)
	} else {
		l.Markers = markers
	}
	return l
}

func buildAreaLayer(ds *geodata.Dataset, cfg Config) Layer {
	style := ResolveStyle(cfg)

	shapes := make([]Shape, 0, len(ds.Areas))
	for _, rec := range ds.Areas {
		// Tooltip lists every attribute field as (name, value), in
		// source field order.
		tooltip := make([]geodata.Field, len(rec.Fields))
		copy(tooltip, rec.Fields)

		shapes = append(shapes, Shape{
			Geom:    rec.Geom,
			Tooltip: tooltip,
		})
	}

	return Layer{
		Name:   cfg.Name,
		Kind:   KindPolygons,
		Style:  style,
		Shapes: shapes,
	}
}
