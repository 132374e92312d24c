package mapview

import (
	"github.com/rotisserie/eris"
)

// ErrConfig marks an unrecognized basemap or layer selection.
var ErrConfig = eris.New("config error")

// Basemap is one entry of the fixed basemap catalog: a tile source
// URL template plus its required attribution.
type Basemap struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// The catalog, in selector order.
var basemaps = []Basemap{
	{
		ID:          "osm",
		Name:        "OpenStreetMap",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
	},
	{
		ID:          "positron",
		Name:        "CartoDB Positron",
		URL:         "https://basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors © CARTO",
	},
	{
		ID:          "imagery",
		Name:        "Esri World Imagery",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Esri",
	},
}

// Basemaps returns the catalog in selector order.
func Basemaps() []Basemap {
	out := make([]Basemap, len(basemaps))
	copy(out, basemaps)
	return out
}

// LookupBasemap resolves a basemap id. Unknown ids fail with ErrConfig
// rather than silently rendering a blank map.
func LookupBasemap(id string) (Basemap, error) {
	for _, b := range basemaps {
		if b.ID == id {
			return b, nil
		}
	}
	return Basemap{}, eris.Wrapf(ErrConfig, "mapview: unknown basemap %q", id)
}
