package issues

import (
	"time"

	"github.com/civicfix/civicfix-api/internal/features/reports"
)

// BBox is a geographic rectangle [minLon, minLat, maxLon, maxLat]. Both edges
// are inclusive. Boxes crossing the antimeridian are rejected at parse time,
// so minLon < maxLon always holds.
type BBox [4]float64

func (b BBox) MinLon() float64 { return b[0] }
func (b BBox) MinLat() float64 { return b[1] }
func (b BBox) MaxLon() float64 { return b[2] }
func (b BBox) MaxLat() float64 { return b[3] }

// Contains reports whether a point lies within the rectangle, boundary
// included.
func (b BBox) Contains(lon, lat float64) bool {
	return lon >= b.MinLon() && lon <= b.MaxLon() &&
		lat >= b.MinLat() && lat <= b.MaxLat()
}

// ViewportQuery is one transient viewport request: a mandatory bbox plus
// conjunctive optional filters.
type ViewportQuery struct {
	BBox       BBox
	Categories []string
	Statuses   []string
	Since      *time.Time
}

// Matches applies the filter semantics to a single report: inside the bbox
// AND in the category set AND in the status set AND updated at or after
// Since. Absent filters impose no constraint.
func (q *ViewportQuery) Matches(r *reports.Report) bool {
	if !q.BBox.Contains(r.Location.Longitude(), r.Location.Latitude()) {
		return false
	}
	if len(q.Categories) > 0 && !contains(q.Categories, r.Category) {
		return false
	}
	if len(q.Statuses) > 0 && !contains(q.Statuses, r.Status) {
		return false
	}
	if q.Since != nil && r.UpdatedAt.Before(*q.Since) {
		return false
	}
	return true
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

// PointGeometry is a GeoJSON point, [longitude, latitude]
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FeatureProperties is the properties bag map clients render from
type FeatureProperties struct {
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	Severity  int       `json:"severity"`
	UpdatedAt time.Time `json:"updatedAt"`
	ImageURL  string    `json:"imageUrl,omitempty"`
}

// Feature is one report as a GeoJSON point feature
type Feature struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Geometry   PointGeometry     `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// FeatureCollection is the query response. Features is never nil: an empty
// viewport serializes as "features": [].
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

func NewFeatureCollection(features []Feature) *FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// FeatureFromReport projects a report into its GeoJSON feature. The title is
// the report description, which is what the map popup shows.
func FeatureFromReport(r *reports.Report) Feature {
	return Feature{
		Type: "Feature",
		ID:   r.ID,
		Geometry: PointGeometry{
			Type:        "Point",
			Coordinates: [2]float64{r.Location.Longitude(), r.Location.Latitude()},
		},
		Properties: FeatureProperties{
			Title:     r.Description,
			Category:  r.Category,
			Status:    r.Status,
			Severity:  r.Severity,
			UpdatedAt: r.UpdatedAt,
			ImageURL:  r.ImageURL,
		},
	}
}
