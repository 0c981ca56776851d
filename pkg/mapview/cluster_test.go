package mapview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two downtown Calgary blocks roughly 0.01 degrees of longitude apart
func twoNearbyPoints() []Point {
	return []Point{
		{ID: "a", Lon: -114.07, Lat: 51.05, Category: "road"},
		{ID: "b", Lon: -114.06, Lat: 51.05, Category: "water"},
	}
}

func TestClusterPointsMergesAtLowZoom(t *testing.T) {
	clusters, singles := ClusterPoints(twoNearbyPoints(), 10)
	require.Len(t, clusters, 1)
	require.Empty(t, singles)

	c := clusters[0]
	assert.Equal(t, 2, c.Count)
	assert.InDelta(t, -114.065, c.Lon, 1e-9)
	assert.InDelta(t, 51.05, c.Lat, 1e-9)
	assert.Equal(t, map[string]int{"road": 1, "water": 1}, c.Counts)
}

func TestClusterPointsSplitsAtHighZoom(t *testing.T) {
	// At zoom 13 the pair sits ~58px apart, past the merge radius
	clusters, singles := ClusterPoints(twoNearbyPoints(), 13)
	assert.Empty(t, clusters)
	assert.Len(t, singles, 2)
}

func TestClusterPointsBeyondMaxZoomIsAllSingles(t *testing.T) {
	// Even coincident points render individually past the max cluster zoom
	points := []Point{
		{ID: "a", Lon: -114.07, Lat: 51.05, Category: "road"},
		{ID: "b", Lon: -114.07, Lat: 51.05, Category: "road"},
	}
	clusters, singles := ClusterPoints(points, 15)
	assert.Empty(t, clusters)
	assert.Len(t, singles, 2)
}

func TestClusterPointsEmptyInput(t *testing.T) {
	clusters, singles := ClusterPoints(nil, 10)
	assert.Empty(t, clusters)
	assert.Empty(t, singles)
}

func TestClusterPointsIsDeterministic(t *testing.T) {
	points := []Point{
		{ID: "a", Lon: -114.07, Lat: 51.05, Category: "road"},
		{ID: "b", Lon: -114.06, Lat: 51.05, Category: "water"},
		{ID: "c", Lon: -110.0, Lat: 51.05, Category: "road"},
	}

	first, firstSingles := ClusterPoints(points, 10)
	for i := 0; i < 10; i++ {
		clusters, singles := ClusterPoints(points, 10)
		assert.Equal(t, first, clusters)
		assert.Equal(t, firstSingles, singles)
	}
}

func TestClusterCategoryCounts(t *testing.T) {
	points := []Point{
		{ID: "a", Lon: -114.07, Lat: 51.05, Category: "road"},
		{ID: "b", Lon: -114.07, Lat: 51.05, Category: "road"},
		{ID: "c", Lon: -114.07, Lat: 51.05, Category: "water"},
		{ID: "d", Lon: -114.07, Lat: 51.05, Category: "sinkhole"},
	}
	clusters, _ := ClusterPoints(points, 10)
	require.Len(t, clusters, 1)

	// Untracked categories fold into "other"
	assert.Equal(t, map[string]int{"road": 2, "water": 1, CategoryOther: 1}, clusters[0].Counts)
}

func TestRepresentativePlurality(t *testing.T) {
	c := Cluster{Counts: map[string]int{"road": 5, "water": 2, "electrical": 1}}
	assert.Equal(t, "road", c.Representative())
}

func TestRepresentativeTieBreak(t *testing.T) {
	tests := []struct {
		counts map[string]int
		want   string
	}{
		{map[string]int{"water": 3, "electrical": 3, "road": 1}, "water"},
		{map[string]int{"electrical": 2, "road": 2}, "electrical"},
		{map[string]int{"road": 1, "fire": 1, CategoryOther: 1}, "road"},
		{map[string]int{CategoryOther: 4}, CategoryOther},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.counts), func(t *testing.T) {
			c := Cluster{Counts: tt.counts}
			assert.Equal(t, tt.want, c.Representative())
		})
	}
}

func TestExpansionZoom(t *testing.T) {
	clusters, _ := ClusterPoints(twoNearbyPoints(), 6)
	require.Len(t, clusters, 1)

	// The pair separates once the pixel distance exceeds the merge radius,
	// which for these coordinates first happens at zoom 13
	assert.Equal(t, 13.0, ExpansionZoom(clusters[0], 6))
}

func TestExpansionZoomCoincidentPoints(t *testing.T) {
	points := []Point{
		{ID: "a", Lon: -114.07, Lat: 51.05, Category: "road"},
		{ID: "b", Lon: -114.07, Lat: 51.05, Category: "water"},
	}
	clusters, _ := ClusterPoints(points, 6)
	require.Len(t, clusters, 1)

	// Coincident points never separate while clustering is active, so the
	// expansion target is just past the max cluster zoom
	assert.Equal(t, ClusterMaxZoom+1, ExpansionZoom(clusters[0], 6))
}

func TestProjectDoublesPerZoomLevel(t *testing.T) {
	a := project(-114.07, 51.05, 6)
	b := project(-114.06, 51.05, 6)
	d6 := pixelDistance(a, b)

	a = project(-114.07, 51.05, 7)
	b = project(-114.06, 51.05, 7)
	d7 := pixelDistance(a, b)

	assert.InDelta(t, 2*d6, d7, 1e-6)
}
