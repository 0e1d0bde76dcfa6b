package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"alcyxob/coachhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressService_StatsFollowDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.user(t, "ana", domain.RoleTrainee, "")
	ben := f.user(t, "ben", domain.RoleTrainee, "")

	w := f.workout(t, ana, "Run", false)
	f.workout(t, ana, "Lift", false)
	f.workout(t, ben, "Swim", false)

	stats, err := f.progress.Stats(ctx, ana, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.ActivePlans)
	assert.Zero(t, stats.CompletedWorkouts)

	_, err = f.progress.RecordCompletion(ctx, ana, w.ID)
	require.NoError(t, err)

	after, err := f.progress.Stats(ctx, ana, "")
	require.NoError(t, err)
	assert.Equal(t, stats.CompletedWorkouts+1, after.CompletedWorkouts)
	assert.Equal(t, stats.ActivePlans, after.ActivePlans, "completing does not touch the plan")

	require.NoError(t, f.workouts.Delete(ctx, ana, w.ID))
	after, err = f.progress.Stats(ctx, ana, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, after.ActivePlans)
	assert.EqualValues(t, 1, after.CompletedWorkouts, "records outlive their workout")
}

func TestProgressService_RecordCompletionSnapshotsExercises(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.user(t, "ana", domain.RoleTrainee, "")
	w := f.workout(t, ana, "Strength", false)
	ex, err := f.workouts.AddExercise(ctx, ana, w.ID, ExerciseInput{Name: "Squat", Sets: 5, Reps: 5})
	require.NoError(t, err)

	rec, err := f.progress.RecordCompletion(ctx, ana, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Strength", rec.WorkoutName)
	require.Len(t, rec.Exercises, 1)

	// Later edits do not rewrite history.
	require.NoError(t, f.workouts.RemoveExercise(ctx, ana, w.ID, ex.ID))
	history, err := f.progress.History(ctx, ana, "", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, history[0].Exercises, 1)
	assert.Equal(t, "Squat", history[0].Exercises[0].Name)
}

func TestProgressService_RecordCompletionRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")
	w := f.workout(t, ana, "Run", false)

	_, err := f.progress.RecordCompletion(ctx, ana, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.progress.RecordCompletion(ctx, ana, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.progress.RecordCompletion(ctx, coach, w.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestProgressService_HistoryNewestFirstAndLimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")
	ben := f.user(t, "ben", domain.RoleTrainee, "")

	var ids []string
	for i := 0; i < 9; i++ {
		w := f.workout(t, ana, fmt.Sprintf("Day %d", i), false)
		_, err := f.progress.RecordCompletion(ctx, ana, w.ID)
		require.NoError(t, err)
		ids = append(ids, w.ID)
	}

	history, err := f.progress.History(ctx, ana, "", 0)
	require.NoError(t, err)
	require.Len(t, history, 7)
	assert.Equal(t, ids[8], history[0].WorkoutID)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].CompletedAt.After(history[i].CompletedAt))
	}

	short, err := f.progress.History(ctx, ana, "", 2)
	require.NoError(t, err)
	assert.Len(t, short, 2)

	viaCoach, err := f.progress.History(ctx, coach, "ana", 0)
	require.NoError(t, err)
	assert.Len(t, viaCoach, 7)

	_, err = f.progress.History(ctx, ben, "ana", 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.progress.Stats(ctx, ben, "ana")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.progress.Stats(ctx, coach, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProgressService_WatchHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")
	ben := f.user(t, "ben", domain.RoleTrainee, "")
	w := f.workout(t, ana, "Run", false)

	sub, err := f.progress.WatchHistory(ctx, coach, "ana", 0)
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, receive(t, sub.C))

	_, err = f.progress.RecordCompletion(ctx, ana, w.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		select {
		case snap := <-sub.C:
			return len(snap) == 1 && snap[0].WorkoutID == w.ID
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	_, err = f.progress.WatchHistory(ctx, ben, "ana", 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
