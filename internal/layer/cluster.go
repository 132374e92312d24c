package layer

import (
	"math"
	"sort"
)

// clusterCellDegrees is the grid cell size for marker clustering,
// roughly 50 m at London's latitude.
const clusterCellDegrees = 0.0005

type cellKey struct {
	latIdx int
	lonIdx int
}

// clusterMarkers groups markers into grid cells and emits one cluster
// per occupied cell, positioned at the mean of its members. Output
// order is deterministic (cell row-major).
func clusterMarkers(markers []Marker, cellDeg float64) []Cluster {
	cells := make(map[cellKey][]Marker)
	for _, m := range markers {
		key := cellKey{
			latIdx: int(math.Floor(m.Lat / cellDeg)),
			lonIdx: int(math.Floor(m.Lon / cellDeg)),
		}
		cells[key] = append(cells[key], m)
	}

	keys := make([]cellKey, 0, len(cells))
	for key := range cells {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].latIdx != keys[j].latIdx {
			return keys[i].latIdx < keys[j].latIdx
		}
		return keys[i].lonIdx < keys[j].lonIdx
	})

	clusters := make([]Cluster, 0, len(keys))
	for _, key := range keys {
		members := cells[key]
		var sumLat, sumLon float64
		for _, m := range members {
			sumLat += m.Lat
			sumLon += m.Lon
		}
		n := float64(len(members))
		clusters = append(clusters, Cluster{
			Lat:     sumLat / n,
			Lon:     sumLon / n,
			Count:   len(members),
			Members: members,
		})
	}
	return clusters
}
