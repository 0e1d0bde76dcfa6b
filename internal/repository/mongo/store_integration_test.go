package mongo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a replica-set MongoDB, e.g.
// COACHHUB_MONGO_TEST_URI="mongodb://localhost:27017/?replicaSet=rs0".
func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	uri := os.Getenv("COACHHUB_MONGO_TEST_URI")
	if uri == "" {
		t.Skip("COACHHUB_MONGO_TEST_URI not set")
	}
	client, err := ConnectDB(uri)
	require.NoError(t, err)

	db := client.Database("coachhub_test_" + uuid.NewString()[:8])
	ctx := context.Background()
	EnsureIndexes(ctx, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = DisconnectDB(client)
	})
	return NewStore(client, db)
}

func TestMongoStore_CloneIsUniquePerSource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	src := "w1"

	id, err := store.Workouts.CreateWithExercises(ctx, &domain.Workout{UserID: "ana", Name: "copy", ClonedFrom: &src},
		[]domain.Exercise{{Name: "Squat", Sets: 3, Reps: 5}})
	require.NoError(t, err)

	_, err = store.Workouts.CreateWithExercises(ctx, &domain.Workout{UserID: "ana", Name: "copy", ClonedFrom: &src},
		[]domain.Exercise{{Name: "Squat"}})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	n, err := store.Exercises.CountByWorkout(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// Plans that are not clones never collide.
	for i := 0; i < 2; i++ {
		_, err := store.Workouts.Create(ctx, &domain.Workout{UserID: "ana", Name: "fresh"})
		require.NoError(t, err)
	}
}

func TestMongoStore_ClonedExercisesKeepOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	src := "w1"

	copies := make([]domain.Exercise, 50)
	for i := range copies {
		copies[i] = domain.Exercise{Name: fmt.Sprintf("ex-%02d", i)}
	}
	id, err := store.Workouts.CreateWithExercises(ctx, &domain.Workout{UserID: "ana", Name: "copy", ClonedFrom: &src}, copies)
	require.NoError(t, err)
	_, err = store.Exercises.Create(ctx, &domain.Exercise{WorkoutID: id, Name: "added"})
	require.NoError(t, err)

	list, err := store.Exercises.ListByWorkout(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, len(copies)+1)
	for i := range copies {
		assert.Equal(t, copies[i].Name, list[i].Name)
		assert.False(t, list[i].CreatedAt.After(time.Now().UTC()), "copies are not stamped in the future")
	}
	assert.Equal(t, "added", list[len(copies)].Name)
}

func TestMongoStore_DeleteCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Workouts.Create(ctx, &domain.Workout{UserID: "ana", Name: "Legs"})
	require.NoError(t, err)
	_, err = store.Exercises.Create(ctx, &domain.Exercise{WorkoutID: id, Name: "Squat"})
	require.NoError(t, err)

	require.NoError(t, store.Workouts.Delete(ctx, id))
	_, err = store.Workouts.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	n, err := store.Exercises.CountByWorkout(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMongoStore_ClaimAndMarkRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Users.Create(ctx, &domain.User{ID: "ana", Role: domain.RoleTrainee}))
	require.NoError(t, store.Users.ClaimTrainee(ctx, "ana", "coach"))
	assert.ErrorIs(t, store.Users.ClaimTrainee(ctx, "ana", "rival"), repository.ErrUpdateFailed)

	for _, sender := range []string{"ana", "ana", "coach"} {
		_, err := store.Feedback.Create(ctx, &domain.Message{TrainerID: "coach", TraineeID: "ana", SenderID: sender, Message: "m"})
		require.NoError(t, err)
	}
	n, err := store.Feedback.MarkRead(ctx, "coach", "ana")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	unread, err := store.Feedback.CountUnread(ctx, "coach")
	require.NoError(t, err)
	assert.Zero(t, unread)
}
