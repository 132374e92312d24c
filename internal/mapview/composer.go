// Package mapview assembles the renderable map: basemap, center,
// zoom, ordered layers, and the layer-visibility control.
package mapview

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/epimaps/broadstreet/internal/geodata"
	"github.com/epimaps/broadstreet/internal/layer"
)

// Fallback center when the dataset holds no points at all: the Broad
// Street pump.
const (
	defaultCenterLat = 51.5132
	defaultCenterLon = -0.1366
)

// DefaultZoom suits the extent of the Soho outbreak dataset.
const DefaultZoom = 16

// ControlState carries the user-facing toggles and basemap selection.
type ControlState struct {
	ShowDeaths bool   `json:"show_deaths"`
	ShowPumps  bool   `json:"show_pumps"`
	ShowArea   bool   `json:"show_area"`
	Basemap    string `json:"basemap"`
}

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is the lat/lon bounding box of the visible records.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// LayerToggle is one entry of the layer-visibility control.
type LayerToggle struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// MapView is a fully composed map, ready for rendering by the UI
// shell. Built fresh on every render.
type MapView struct {
	RenderID   string        `json:"render_id"`
	Center     Coordinate    `json:"center"`
	Zoom       int           `json:"zoom"`
	Basemap    Basemap       `json:"basemap"`
	Layers     []layer.Layer `json:"layers"`
	Control    []LayerToggle `json:"control"`
	Bounds     *Bounds       `json:"bounds,omitempty"`
	DeathCount int           `json:"death_count"`
	PumpCount  int           `json:"pump_count"`
}

// Composer builds MapViews from a dataset and a control state.
type Composer struct {
	zoom    int
	palette map[string]layer.Style
}

// NewComposer creates a Composer. A zero zoom selects DefaultZoom;
// palette may be nil for the built-in styles.
func NewComposer(zoom int, palette map[string]layer.Style) *Composer {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	return &Composer{zoom: zoom, palette: palette}
}

// Compose assembles the map view for the given control state. Layers
// appear in the fixed order deaths, pumps, areas, restricted to the
// enabled ones. Any failure aborts the whole render; no partial view
// is returned.
func (c *Composer) Compose(ds *geodata.Dataset, state ControlState) (*MapView, error) {
	basemap, err := LookupBasemap(state.Basemap)
	if err != nil {
		return nil, err
	}

	cfgs := layer.DefaultConfigs(c.palette)
	for i := range cfgs {
		switch cfgs[i].Name {
		case geodata.LayerDeaths:
			cfgs[i].Enabled = state.ShowDeaths
		case geodata.LayerPumps:
			cfgs[i].Enabled = state.ShowPumps
		case geodata.LayerAreas:
			cfgs[i].Enabled = state.ShowArea
		}
	}

	layers, err := layer.Build(ds, cfgs)
	if err != nil {
		return nil, err
	}

	control := make([]LayerToggle, 0, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.Enabled {
			control = append(control, LayerToggle{Name: cfg.Name, Visible: true})
		}
	}

	view := &MapView{
		RenderID:   uuid.NewString(),
		Center:     computeCenter(ds, state),
		Zoom:       c.zoom,
		Basemap:    basemap,
		Layers:     layers,
		Control:    control,
		Bounds:     visibleBounds(ds, state),
		DeathCount: ds.DeathCount(),
		PumpCount:  ds.PumpCount(),
	}

	zap.L().Debug("mapview: composed",
		zap.String("render_id", view.RenderID),
		zap.String("basemap", basemap.ID),
		zap.Int("layers", len(layers)),
	)
	return view, nil
}

// computeCenter picks the map center: the mean of the first enabled
// non-empty point layer (deaths before pumps), then the mean over the
// full unfiltered point set, then the Broad Street constant.
func computeCenter(ds *geodata.Dataset, state ControlState) Coordinate {
	if state.ShowDeaths {
		if c, ok := meanCoordinate(ds.Deaths); ok {
			return c
		}
	}
	if state.ShowPumps {
		if c, ok := meanCoordinate(ds.Pumps); ok {
			return c
		}
	}

	all := make([]geodata.PointRecord, 0, len(ds.Deaths)+len(ds.Pumps))
	all = append(all, ds.Deaths...)
	all = append(all, ds.Pumps...)
	if c, ok := meanCoordinate(all); ok {
		return c
	}
	return Coordinate{Lat: defaultCenterLat, Lon: defaultCenterLon}
}

func meanCoordinate(records []geodata.PointRecord) (Coordinate, bool) {
	if len(records) == 0 {
		return Coordinate{}, false
	}
	var sumLat, sumLon float64
	for _, r := range records {
		sumLat += r.Lat()
		sumLon += r.Lon()
	}
	n := float64(len(records))
	return Coordinate{Lat: sumLat / n, Lon: sumLon / n}, true
}

// visibleBounds computes the bounding box over every enabled record,
// or nil when nothing is visible.
func visibleBounds(ds *geodata.Dataset, state ControlState) *Bounds {
	var b *Bounds
	extend := func(lon, lat float64) {
		if b == nil {
			b = &Bounds{MinLat: lat, MaxLat: lat, MinLon: lon, MaxLon: lon}
			return
		}
		if lat < b.MinLat {
			b.MinLat = lat
		}
		if lat > b.MaxLat {
			b.MaxLat = lat
		}
		if lon < b.MinLon {
			b.MinLon = lon
		}
		if lon > b.MaxLon {
			b.MaxLon = lon
		}
	}

	if state.ShowDeaths {
		for _, r := range ds.Deaths {
			extend(r.Lon(), r.Lat())
		}
	}
	if state.ShowPumps {
		for _, r := range ds.Pumps {
			extend(r.Lon(), r.Lat())
		}
	}
	if state.ShowArea {
		for _, r := range ds.Areas {
			flat := r.Geom.FlatCoords()
			stride := r.Geom.Stride()
			for i := 0; i+1 < len(flat); i += stride {
				extend(flat[i], flat[i+1])
			}
		}
	}
	return b
}
