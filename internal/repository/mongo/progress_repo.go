package mongo

import (
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoProgressRepository implements repository.ProgressRepository.
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new completion record repository.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(completionCollectionName),
	}
}

// Create appends a completion record.
func (r *mongoProgressRepository) Create(ctx context.Context, record *domain.CompletionRecord) (string, error) {
	if record.UserID == "" || record.WorkoutID == "" {
		return "", errors.New("completion record requires userId and workoutId")
	}
	record.ID = newID()
	record.CompletedAt = time.Now().UTC()
	if record.Exercises == nil {
		record.Exercises = []domain.Exercise{}
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return "", translate(err)
	}
	return record.ID, nil
}

// History returns the most recent completions of a user.
func (r *mongoProgressRepository) History(ctx context.Context, userID string, limit int64) ([]domain.CompletionRecord, error) {
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "completedAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []domain.CompletionRecord{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CountByUser returns a server-side count of a user's completions.
func (r *mongoProgressRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

// EnsureCompletionIndexes creates the history index.
func EnsureCompletionIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "completedAt", Value: -1}},
	})
	return err
}
