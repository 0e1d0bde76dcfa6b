package session

import (
	"context"
	"testing"
	"time"

	"alcyxob/coachhub/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(id string) *Record {
	return &Record{
		ID:        id,
		Identity:  Identity{UserID: "ana", DisplayName: "Ana", Email: "ana@example.com"},
		Provider:  "local",
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSession_Accessors(t *testing.T) {
	sess := New(sampleRecord("s1"), nil)
	assert.Equal(t, "ana", sess.UserID())
	assert.True(t, sess.NeedsOnboarding())
	assert.Equal(t, domain.Role(""), sess.Role())
	assert.Equal(t, "Ana", sess.DisplayName())

	sess.Profile = &domain.User{ID: "ana", Role: domain.RoleTrainee, DisplayName: "Ana P."}
	assert.False(t, sess.NeedsOnboarding())
	assert.Equal(t, domain.RoleTrainee, sess.Role())
	assert.Equal(t, "Ana P.", sess.DisplayName())

	assert.Equal(t, "Unknown User", (&Session{}).DisplayName())
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, sampleRecord("s1"), time.Hour))
	rec, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "ana", rec.Identity.UserID)

	now = now.Add(time.Hour)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, sampleRecord("s2"), time.Hour))
	require.NoError(t, store.Delete(ctx, "s2"))
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "never-existed"))
}

func TestRedisStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewRedisStore(client, "coachhub:")

	require.NoError(t, store.Save(ctx, sampleRecord("s1"), time.Hour))
	assert.True(t, mr.Exists("coachhub:session:s1"))

	rec, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, *sampleRecord("s1"), *rec)

	mr.FastForward(time.Hour + time.Second)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, sampleRecord("s2"), time.Hour))
	require.NoError(t, store.Delete(ctx, "s2"))
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_BackendDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, "")

	mr.Close()
	_, err := store.Get(context.Background(), "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}
