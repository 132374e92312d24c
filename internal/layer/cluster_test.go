package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterMarkers_GroupsNearby(t *testing.T) {
	markers := []Marker{
		{Lat: 51.51330, Lon: -0.13670},
		{Lat: 51.51334, Lon: -0.13668}, // same cell as above
		{Lat: 51.52000, Lon: -0.10000}, // far away
	}

	clusters := clusterMarkers(markers, clusterCellDegrees)
	require.Len(t, clusters, 2)

	var grouped Cluster
	for _, c := range clusters {
		if c.Count == 2 {
			grouped = c
		}
	}
	require.Equal(t, 2, grouped.Count)
	assert.InDelta(t, 51.51332, grouped.Lat, 1e-5)
	assert.InDelta(t, -0.13669, grouped.Lon, 1e-5)
	assert.Len(t, grouped.Members, 2)
}

func TestClusterMarkers_DeterministicOrder(t *testing.T) {
	markers := []Marker{
		{Lat: 51.52, Lon: -0.10},
		{Lat: 51.50, Lon: -0.14},
		{Lat: 51.51, Lon: -0.12},
	}

	first := clusterMarkers(markers, clusterCellDegrees)
	second := clusterMarkers(markers, clusterCellDegrees)
	assert.Equal(t, first, second)

	// Row-major cell order: ascending latitude index.
	require.Len(t, first, 3)
	assert.Less(t, first[0].Lat, first[1].Lat)
	assert.Less(t, first[1].Lat, first[2].Lat)
}

func TestClusterMarkers_Empty(t *testing.T) {
	clusters := clusterMarkers(nil, clusterCellDegrees)
	assert.Empty(t, clusters)
}

func TestClusterMarkers_SingleMarkerCell(t *testing.T) {
	clusters := clusterMarkers([]Marker{{Lat: 51.5, Lon: -0.1, Label: "Death Location"}}, clusterCellDegrees)
	require.Len(t, clusters, 1)
	assert.Equal(t, 1, clusters[0].Count)
	assert.Equal(t, "Death Location", clusters[0].Members[0].Label)
}
