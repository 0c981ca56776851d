package reports

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/civicfix/civicfix-api/pkg/errors"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		collection: db.Collection("reports"),
	}
}

// IDExists checks whether a report id is already taken
func (r *Repository) IDExists(ctx context.Context, id string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert persists a report in a single atomic write keyed by its id. A write
// for an id that already exists is a no-op: $setOnInsert leaves the existing
// document untouched, which makes client retry-after-timeout duplication safe.
func (r *Repository) Insert(ctx context.Context, report *Report) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": report.ID},
		bson.M{"$setOnInsert": report},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetByID fetches one report
func (r *Repository) GetByID(ctx context.Context, id string) (*Report, error) {
	var report Report
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// ListRecent returns the most recent reports, newest first, capped at
// maxListReports
func (r *Repository) ListRecent(ctx context.Context) ([]Report, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(maxListReports)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// UpdateStatus applies a dashboard workflow transition. Only status and
// assignedParty are mutable after creation.
func (r *Repository) UpdateStatus(ctx context.Context, id, status, assignedParty string) (*Report, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, status) {
		return nil, apperrors.ErrValidation
	}

	update := bson.M{"status": status, "updatedAt": nowUTC()}
	if assignedParty != "" {
		update["assignedParty"] = assignedParty
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var updated Report
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}
