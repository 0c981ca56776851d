// Package mapview implements the client-side half of the live map: spatial
// clustering of report points and the viewport refetch loop. Clustering is a
// pure function of (points, zoom) so it can run against any map surface.
package mapview

import (
	"math"
)

const (
	// Merge radius in screen pixels at any zoom
	ClusterRadiusPx = 50.0

	// Beyond this zoom every point renders individually
	ClusterMaxZoom = 14.0

	tileSize = 256.0
)

// CategoryOther buckets any category the map does not track explicitly
const CategoryOther = "other"

// CategoryPrecedence fixes the tie-break order when two categories hold the
// same highest count in a cluster: earlier wins.
var CategoryPrecedence = []string{"water", "electrical", "road", "fire", CategoryOther}

// Point is one report rendered on the map
type Point struct {
	ID       string
	Lon      float64
	Lat      float64
	Category string
}

// Cluster is a spatial aggregate of two or more points within the merge
// radius at the current zoom. Recomputed on every viewport change, never
// persisted.
type Cluster struct {
	Lon    float64
	Lat    float64
	Count  int
	Counts map[string]int
	Points []Point
}

// Representative picks the cluster's visual category: the category with the
// strictly highest count, ties resolved by CategoryPrecedence order.
func (c *Cluster) Representative() string {
	best := CategoryOther
	bestCount := -1
	for _, category := range CategoryPrecedence {
		if count := c.Counts[category]; count > bestCount {
			best = category
			bestCount = count
		}
	}
	return best
}

// ClusterPoints merges points lying within ClusterRadiusPx of each other at
// the given zoom. Returns the clusters and the points left unclustered. The
// transform is deterministic for a given input order and entirely
// side-effect free.
func ClusterPoints(points []Point, zoom float64) ([]Cluster, []Point) {
	if zoom > ClusterMaxZoom {
		return nil, points
	}

	px := make([][2]float64, len(points))
	for i, p := range points {
		px[i] = project(p.Lon, p.Lat, zoom)
	}

	var clusters []Cluster
	var singles []Point
	visited := make([]bool, len(points))

	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true

		members := []int{i}
		for j := i + 1; j < len(points); j++ {
			if visited[j] {
				continue
			}
			if pixelDistance(px[i], px[j]) <= ClusterRadiusPx {
				visited[j] = true
				members = append(members, j)
			}
		}

		if len(members) == 1 {
			singles = append(singles, points[i])
			continue
		}

		clusters = append(clusters, buildCluster(points, members))
	}

	return clusters, singles
}

func buildCluster(points []Point, members []int) Cluster {
	cluster := Cluster{
		Counts: make(map[string]int),
		Points: make([]Point, 0, len(members)),
	}

	var sumLon, sumLat float64
	for _, idx := range members {
		p := points[idx]
		cluster.Points = append(cluster.Points, p)
		cluster.Counts[normalizeCategory(p.Category)]++
		sumLon += p.Lon
		sumLat += p.Lat
	}

	cluster.Count = len(members)
	cluster.Lon = sumLon / float64(len(members))
	cluster.Lat = sumLat / float64(len(members))
	return cluster
}

// ExpansionZoom computes the minimum zoom at which the cluster's constituent
// points split into more than one marker; selecting a cluster animates the
// view to this zoom. Capped just past ClusterMaxZoom, where clustering stops
// entirely.
func ExpansionZoom(c Cluster, currentZoom float64) float64 {
	for z := math.Floor(currentZoom) + 1; z <= ClusterMaxZoom; z++ {
		clusters, singles := ClusterPoints(c.Points, z)
		if len(clusters)+len(singles) > 1 {
			return z
		}
	}
	return ClusterMaxZoom + 1
}

func normalizeCategory(category string) string {
	for _, tracked := range CategoryPrecedence {
		if category == tracked {
			return category
		}
	}
	return CategoryOther
}

// project maps lon/lat to web-mercator pixel coordinates at a zoom level
func project(lon, lat float64, zoom float64) [2]float64 {
	worldSize := tileSize * math.Pow(2, zoom)

	x := (lon + 180) / 360 * worldSize

	sinLat := math.Sin(lat * math.Pi / 180)
	y := (0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)) * worldSize

	return [2]float64{x, y}
}

func pixelDistance(a, b [2]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
}
