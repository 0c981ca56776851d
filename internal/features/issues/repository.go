package issues

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicfix/civicfix-api/internal/features/reports"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		collection: db.Collection("reports"),
	}
}

// FindWithin selects every report whose location lies within the bbox,
// narrowed by the optional filters. The bbox is a flat lon/lat rectangle with
// inclusive edges, but a $geoWithin polygon on a 2dsphere index has geodesic
// edges: the constant-latitude top and bottom edges of the ring bow poleward,
// off the parallels by up to the sagitta of the arc. The polygon query is
// therefore only the index-backed candidate pre-selection, with its latitudes
// padded outward to cover the bulge, and every candidate is post-filtered
// with the query's planar semantics. Cost still scales with matches, and
// boundary points are included exactly. Result order is unspecified.
func (r *Repository) FindWithin(ctx context.Context, query *ViewportQuery) ([]Feature, error) {
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$geometry": bson.M{
					"type":        "Polygon",
					"coordinates": candidateRing(query.BBox),
				},
			},
		},
	}
	if len(query.Categories) > 0 {
		filter["category"] = bson.M{"$in": query.Categories}
	}
	if len(query.Statuses) > 0 {
		filter["status"] = bson.M{"$in": query.Statuses}
	}
	if query.Since != nil {
		filter["updatedAt"] = bson.M{"$gte": *query.Since}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []reports.Report
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return matchingFeatures(query, docs), nil
}

// matchingFeatures applies the query's exact planar semantics to the
// candidate set the spherical index query returned
func matchingFeatures(query *ViewportQuery, docs []reports.Report) []Feature {
	features := make([]Feature, 0, len(docs))
	for i := range docs {
		if query.Matches(&docs[i]) {
			features = append(features, FeatureFromReport(&docs[i]))
		}
	}
	return features
}

// candidateRing builds the closed counter-clockwise polygon ring for the
// candidate query, with the latitudes pushed outward past the geodesic bulge
// so no point inside the flat rectangle is missed.
func candidateRing(b BBox) [][][2]float64 {
	pad := latPadding(b)
	minLat := math.Max(b.MinLat()-pad, -90)
	maxLat := math.Min(b.MaxLat()+pad, 90)

	return [][][2]float64{{
		{b.MinLon(), minLat},
		{b.MaxLon(), minLat},
		{b.MaxLon(), maxLat},
		{b.MinLon(), maxLat},
		{b.MinLon(), minLat},
	}}
}

// latPadding bounds, in degrees, how far a geodesic between two points on the
// same parallel strays from that parallel: the sagitta of the arc, roughly
// (dLon^2/8)*tan(lat) radians. Meridian edges are great circles and need no
// padding.
func latPadding(b BBox) float64 {
	dLon := (b.MaxLon() - b.MinLon()) * math.Pi / 180
	lat := math.Max(math.Abs(b.MinLat()), math.Abs(b.MaxLat())) * math.Pi / 180

	sagitta := dLon * dLon / 8 * math.Abs(math.Tan(lat))
	return sagitta*180/math.Pi + 1e-6
}
