package mongo

import (
	"alcyxob/coachhub/internal/repository"
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// Collection names. exercises and completedWorkouts are the flattened
// workouts/{id}/exercises and users/{id}/completedWorkouts subcollections.
const (
	accountCollectionName    = "accounts"
	userCollectionName       = "users"
	workoutCollectionName    = "workouts"
	exerciseCollectionName   = "exercises"
	feedbackCollectionName   = "feedback"
	completionCollectionName = "completedWorkouts"
)

// ConnectDB establishes a connection to MongoDB using the provided URI.
// Multi-document writes run in transactions, so the deployment must be a
// replica set (a single-node replica set is enough).
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary so an unreachable server fails at startup, not on the
	// first request.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewStore wires every Mongo repository against one database.
func NewStore(client *mongo.Client, db *mongo.Database) repository.Store {
	return repository.Store{
		Accounts:  NewMongoAccountRepository(db),
		Users:     NewMongoUserRepository(db),
		Workouts:  NewMongoWorkoutRepository(client, db),
		Exercises: NewMongoExerciseRepository(db),
		Feedback:  NewMongoFeedbackRepository(client, db),
		Progress:  NewMongoProgressRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Failures are logged,
// not fatal.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *slog.Logger) {
	ensure := func(name string, fn func(context.Context, *mongo.Collection) error) {
		if err := fn(ctx, db.Collection(name)); err != nil {
			logger.Warn("failed to create indexes", "collection", name, "error", err)
		}
	}
	ensure(accountCollectionName, EnsureAccountIndexes)
	ensure(userCollectionName, EnsureUserIndexes)
	ensure(workoutCollectionName, EnsureWorkoutIndexes)
	ensure(exerciseCollectionName, EnsureExerciseIndexes)
	ensure(feedbackCollectionName, EnsureFeedbackIndexes)
	ensure(completionCollectionName, EnsureCompletionIndexes)
}

// newID returns a fresh document id. ObjectID hex keeps ids roughly
// time-ordered, which the list queries use as a tie-breaker.
func newID() string {
	return primitive.NewObjectID().Hex()
}

// withTransaction runs fn inside a session transaction so that either every
// write in fn is applied or none is.
func withTransaction(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// translate maps driver errors onto repository errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	}
	return err
}
