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

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create appends an exercise to its workout.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (string, error) {
	if exercise.Name == "" || exercise.WorkoutID == "" {
		return "", errors.New("exercise name and workout ID are required")
	}
	exercise.ID = newID()
	exercise.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		return "", translate(err)
	}
	return exercise.ID, nil
}

// Delete removes one exercise of a workout.
func (r *mongoExerciseRepository) Delete(ctx context.Context, workoutID, exerciseID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": exerciseID, "workoutId": workoutID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByWorkout returns the exercises of a workout in insertion order.
func (r *mongoExerciseRepository) ListByWorkout(ctx context.Context, workoutID string) ([]domain.Exercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"workoutId": workoutID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// CountByWorkout counts the exercises beneath a workout.
func (r *mongoExerciseRepository) CountByWorkout(ctx context.Context, workoutID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"workoutId": workoutID})
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index(),
	})
	return err
}
