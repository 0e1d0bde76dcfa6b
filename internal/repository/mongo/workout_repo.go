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

var (
	newestFirst   = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	featuredFirst = bson.D{{Key: "isFeatured", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
)

// mongoWorkoutRepository implements repository.WorkoutRepository. It also
// holds the exercises collection because delete and clone must cover both
// collections in one transaction.
type mongoWorkoutRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	exercises  *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(client *mongo.Client, db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		client:     client,
		collection: db.Collection(workoutCollectionName),
		exercises:  db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (string, error) {
	if workout.UserID == "" || workout.Name == "" {
		return "", errors.New("workout requires userId and name")
	}
	workout.ID = newID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, workout); err != nil {
		return "", translate(err)
	}
	return workout.ID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	var workout domain.Workout
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout); err != nil {
		return nil, translate(err)
	}
	return &workout, nil
}

// ListByOwner retrieves every workout owned by userID, newest first.
func (r *mongoWorkoutRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{"userId": userID}, newestFirst)
}

// ListPublic retrieves public workouts, featured ones first.
func (r *mongoWorkoutRepository) ListPublic(ctx context.Context) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{"isPublic": true}, featuredFirst)
}

func (r *mongoWorkoutRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]domain.Workout, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Update merge-patches the listed fields.
func (r *mongoWorkoutRepository) Update(ctx context.Context, id string, patch domain.WorkoutPatch) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Difficulty != nil {
		set["difficulty"] = *patch.Difficulty
	}
	if patch.Recommendations != nil {
		set["recommendations"] = *patch.Recommendations
	}
	if patch.IsPublic != nil {
		set["isPublic"] = *patch.IsPublic
	}
	if patch.IsFeatured != nil {
		set["isFeatured"] = *patch.IsFeatured
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the workout and every exercise beneath it in one transaction.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id string) error {
	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.exercises.DeleteMany(sc, bson.M{"workoutId": id}); err != nil {
			return err
		}
		result, err := r.collection.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

// FindClone looks up the clone userID already holds of sourceID.
func (r *mongoWorkoutRepository) FindClone(ctx context.Context, userID, sourceID string) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "clonedFrom": sourceID}).Decode(&workout)
	if err != nil {
		return nil, translate(err)
	}
	return &workout, nil
}

// CreateWithExercises inserts a workout together with its exercises. The
// unique (userId, clonedFrom) index turns a racing duplicate clone into
// ErrDuplicate and rolls the whole transaction back.
func (r *mongoWorkoutRepository) CreateWithExercises(ctx context.Context, workout *domain.Workout, exercises []domain.Exercise) (string, error) {
	if workout.UserID == "" || workout.Name == "" {
		return "", errors.New("workout requires userId and name")
	}
	workout.ID = newID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	docs := make([]interface{}, 0, len(exercises))
	for i := range exercises {
		ex := exercises[i]
		ex.ID = newID()
		ex.WorkoutID = workout.ID
		// Copies share one timestamp; ObjectIDs are issued in order and
		// break the tie in source order.
		ex.CreatedAt = now
		docs = append(docs, ex)
	}

	err := withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.collection.InsertOne(sc, workout); err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}
		_, err := r.exercises.InsertMany(sc, docs)
		return err
	})
	if err != nil {
		return "", translate(err)
	}
	return workout.ID, nil
}

// CountByOwner returns a server-side count of the user's workouts.
func (r *mongoWorkoutRepository) CountByOwner(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "isPublic", Value: 1}, {Key: "isFeatured", Value: -1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// One clone per (user, source).
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "clonedFrom", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"clonedFrom": bson.M{"$type": "string"}}),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
