package layer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epimaps/broadstreet/internal/geodata"
)

func decodeFC(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var fc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc["type"])
	return fc
}

func TestEncodeGeoJSON_Markers(t *testing.T) {
	l := Layer{
		Name: geodata.LayerPumps,
		Kind: KindPoints,
		Markers: []Marker{
			{Lat: 51.5132, Lon: -0.1366, Label: "Water Pump"},
		},
	}

	data, err := EncodeGeoJSON(l)
	require.NoError(t, err)

	fc := decodeFC(t, data)
	features := fc["features"].([]interface{})
	require.Len(t, features, 1)

	feature := features[0].(map[string]interface{})
	geometry := feature["geometry"].(map[string]interface{})
	assert.Equal(t, "Point", geometry["type"])
	coords := geometry["coordinates"].([]interface{})
	assert.InDelta(t, -0.1366, coords[0].(float64), 1e-9)
	assert.InDelta(t, 51.5132, coords[1].(float64), 1e-9)

	props := feature["properties"].(map[string]interface{})
	assert.Equal(t, "Water Pump", props["label"])
	assert.Equal(t, "pumps", props["layer"])
}

func TestEncodeGeoJSON_Clusters(t *testing.T) {
	l := Layer{
		Name:      geodata.LayerDeaths,
		Kind:      KindPoints,
		Clustered: true,
		Clusters: []Cluster{
			{Lat: 51.5, Lon: -0.1, Count: 4},
		},
	}

	data, err := EncodeGeoJSON(l)
	require.NoError(t, err)

	fc := decodeFC(t, data)
	features := fc["features"].([]interface{})
	require.Len(t, features, 1)
	props := features[0].(map[string]interface{})["properties"].(map[string]interface{})
	assert.EqualValues(t, 4, props["count"])
}

func TestEncodeGeoJSON_Polygons(t *testing.T) {
	ds := testDataset()
	layers, err := Build(ds, enabledConfigs())
	require.NoError(t, err)

	data, err := EncodeGeoJSON(layers[2])
	require.NoError(t, err)

	fc := decodeFC(t, data)
	features := fc["features"].([]interface{})
	require.Len(t, features, 1)

	feature := features[0].(map[string]interface{})
	geometry := feature["geometry"].(map[string]interface{})
	assert.Equal(t, "MultiPolygon", geometry["type"])

	props := feature["properties"].(map[string]interface{})
	assert.Equal(t, "Golden Square", props["name"])
	assert.Equal(t, "197", props["cases"])
}

func TestEncodeGeoJSON_EmptyLayer(t *testing.T) {
	data, err := EncodeGeoJSON(Layer{Name: geodata.LayerDeaths, Kind: KindPoints})
	require.NoError(t, err)
	decodeFC(t, data)
}

func TestEncodeGeoJSON_UnknownKind(t *testing.T) {
	_, err := EncodeGeoJSON(Layer{Name: "x", Kind: Kind("heatmap")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot encode kind")
}
