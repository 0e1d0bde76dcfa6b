package realtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func next[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
	var zero T
	return zero
}

func TestMemoryNotifier_DeliversOnlyListenedTopics(t *testing.T) {
	n := NewMemoryNotifier()
	ctx := context.Background()

	ch, stop, err := n.Listen(ctx, TopicWorkouts, ExercisesTopic("w1"))
	require.NoError(t, err)
	defer stop()

	require.NoError(t, n.Publish(ctx, TopicFeedback))
	require.NoError(t, n.Publish(ctx, ExercisesTopic("w1")))
	assert.Equal(t, "workouts/w1/exercises", next(t, ch))

	select {
	case topic := <-ch:
		t.Fatalf("unexpected delivery %q", topic)
	default:
	}
}

func TestMemoryNotifier_PublishNeverBlocks(t *testing.T) {
	n := NewMemoryNotifier()
	ctx := context.Background()
	ch, stop, err := n.Listen(ctx, TopicUsers)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, n.Publish(ctx, TopicUsers))
	}
	assert.Equal(t, TopicUsers, next(t, ch))

	stop()
	stop()
	require.NoError(t, n.Publish(ctx, TopicUsers))
	assert.Empty(t, n.listeners)
}

func TestWatch_RequeriesOnChange(t *testing.T) {
	n := NewMemoryNotifier()
	ctx := context.Background()
	var version atomic.Int32

	sub, err := Watch[int32](ctx, n, discardLogger(), func(context.Context) (int32, error) {
		return version.Load(), nil
	}, TopicWorkouts)
	require.NoError(t, err)
	defer sub.Close()

	assert.EqualValues(t, 0, next(t, sub.C))

	version.Store(1)
	require.NoError(t, n.Publish(ctx, TopicWorkouts))
	assert.EqualValues(t, 1, next(t, sub.C))

	// Unrelated topics do not trigger a reload.
	version.Store(2)
	require.NoError(t, n.Publish(ctx, TopicFeedback))
	select {
	case v := <-sub.C:
		t.Fatalf("unexpected snapshot %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatch_LoadErrorYieldsZeroValue(t *testing.T) {
	n := NewMemoryNotifier()
	sub, err := Watch[[]string](context.Background(), n, discardLogger(), func(context.Context) ([]string, error) {
		return []string{"stale"}, errors.New("backend down")
	}, TopicFeedback)
	require.NoError(t, err)
	defer sub.Close()

	assert.Nil(t, next(t, sub.C))
}

func TestWatch_CloseStopsDelivery(t *testing.T) {
	n := NewMemoryNotifier()
	ctx := context.Background()
	sub, err := Watch[string](ctx, n, discardLogger(), func(context.Context) (string, error) {
		return "snapshot", nil
	}, TopicUsers)
	require.NoError(t, err)

	sub.Close()
	sub.Close()
	require.NoError(t, n.Publish(ctx, TopicUsers))

	_, open := <-sub.C
	assert.False(t, open)
	<-sub.Done()
}

func TestWatch_ContextCancellationEndsSubscription(t *testing.T) {
	n := NewMemoryNotifier()
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := Watch[string](ctx, n, discardLogger(), func(context.Context) (string, error) {
		return "x", nil
	}, TopicUsers)
	require.NoError(t, err)
	next(t, sub.C)

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}
}

func TestRedisNotifier_PublishReachesListener(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	n := NewRedisNotifier(client, "coachhub:")
	ctx := context.Background()

	ch, stop, err := n.Listen(ctx, CompletionsTopic("ana"))
	require.NoError(t, err)
	defer stop()

	require.NoError(t, n.Publish(ctx, CompletionsTopic("ben")))
	require.NoError(t, n.Publish(ctx, CompletionsTopic("ana")))
	assert.Equal(t, "users/ana/completedWorkouts", next(t, ch))
}

func TestRedisNotifier_DrivesWatch(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	n := NewRedisNotifier(client, "coachhub:")
	ctx := context.Background()
	var calls atomic.Int32

	sub, err := Watch[int32](ctx, n, discardLogger(), func(context.Context) (int32, error) {
		return calls.Add(1), nil
	}, TopicFeedback)
	require.NoError(t, err)
	defer sub.Close()

	assert.EqualValues(t, 1, next(t, sub.C))
	require.NoError(t, n.Publish(ctx, TopicFeedback))
	assert.EqualValues(t, 2, next(t, sub.C))
}
