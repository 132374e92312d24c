package layer

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// EncodeGeoJSON renders a built layer as a GeoJSON FeatureCollection.
// Point layers emit one feature per marker (or per cluster when the
// layer is clustered); polygon layers emit one feature per shape with
// its tooltip fields as properties.
func EncodeGeoJSON(l Layer) ([]byte, error) {
	fc := &geojson.FeatureCollection{}

	switch l.Kind {
	case KindPoints:
		if l.Clustered {
			for _, c := range l.Clusters {
				fc.Features = append(fc.Features, &geojson.Feature{
					Geometry: geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat}),
					Properties: map[string]interface{}{
						"layer": l.Name,
						"count": c.Count,
					},
				})
			}
		} else {
			for _, m := range l.Markers {
				fc.Features = append(fc.Features, &geojson.Feature{
					Geometry: geom.NewPointFlat(geom.XY, []float64{m.Lon, m.Lat}),
					Properties: map[string]interface{}{
						"layer": l.Name,
						"label": m.Label,
					},
				})
			}
		}
	case KindPolygons:
		for _, s := range l.Shapes {
			props := map[string]interface{}{"layer": l.Name}
			for _, f := range s.Tooltip {
				props[f.Name] = f.Value
			}
			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry:   s.Geom,
				Properties: props,
			})
		}
	default:
		return nil, eris.Errorf("layer: cannot encode kind %q", l.Kind)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: encode %s as GeoJSON", l.Name)
	}
	return data, nil
}
