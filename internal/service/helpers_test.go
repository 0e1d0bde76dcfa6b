package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/realtime"
	"alcyxob/coachhub/internal/repository"
	"alcyxob/coachhub/internal/repository/memory"
	"alcyxob/coachhub/internal/session"
	"alcyxob/coachhub/internal/storage"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	store      repository.Store
	notifier   *realtime.MemoryNotifier
	files      *fakeStorage
	profiles   ProfileService
	workouts   WorkoutService
	feedback   FeedbackService
	progress   ProgressService
	dashboards DashboardService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// steppingClock advances one second per reading so every write gets a
// distinct, increasing timestamp.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newFixture(t *testing.T, opts ...memory.Option) *fixture {
	t.Helper()
	if len(opts) == 0 {
		opts = []memory.Option{memory.WithClock(steppingClock())}
	}
	logger := discardLogger()
	f := &fixture{
		store:    memory.NewStore(opts...),
		notifier: realtime.NewMemoryNotifier(),
		files:    newFakeStorage(),
	}
	f.profiles = NewProfileService(f.store, f.files, []string{"root@example.com"}, f.notifier, logger)
	f.workouts = NewWorkoutService(f.store, f.notifier, logger)
	f.feedback = NewFeedbackService(f.store, f.notifier, logger)
	f.progress = NewProgressService(f.store, f.notifier, logger)
	f.dashboards = NewDashboardService(f.profiles, f.workouts, f.feedback, f.progress, logger)
	return f
}

// user stores a profile and returns a signed-in session for it.
func (f *fixture) user(t *testing.T, id string, role domain.Role, trainerID string) *session.Session {
	t.Helper()
	u := &domain.User{ID: id, Role: role, DisplayName: id, Email: id + "@example.com"}
	if trainerID != "" {
		u.TrainerID = &trainerID
	}
	require.NoError(t, f.store.Users.Create(context.Background(), u))
	return f.refresh(t, &session.Session{ID: "s-" + id, Identity: session.Identity{UserID: id, DisplayName: id, Email: u.Email}})
}

// refresh reloads the profile the way the request middleware does.
func (f *fixture) refresh(t *testing.T, sess *session.Session) *session.Session {
	t.Helper()
	p, err := f.profiles.Resolve(context.Background(), sess.Identity)
	require.NoError(t, err)
	return &session.Session{ID: sess.ID, Identity: sess.Identity, Profile: p, StartedAt: sess.StartedAt}
}

func newcomer(id, email string) *session.Session {
	return &session.Session{ID: "s-" + id, Identity: session.Identity{UserID: id, DisplayName: id, Email: email}}
}

func (f *fixture) workout(t *testing.T, sess *session.Session, name string, public bool) *domain.Workout {
	t.Helper()
	ctx := context.Background()
	w, err := f.workouts.Create(ctx, sess, CreateWorkoutInput{Name: name})
	require.NoError(t, err)
	if public {
		w, err = f.workouts.Update(ctx, sess, w.ID, domain.WorkoutPatch{IsPublic: boolPtr(true)})
		require.NoError(t, err)
	}
	return w
}

func boolPtr(b bool) *bool               { return &b }
func strPtr(s string) *string            { return &s }
func rolePtr(r domain.Role) *domain.Role { return &r }

// fakeStorage hands out predictable URLs and records deletions.
type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
}

var _ storage.FileStorage = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage { return &fakeStorage{} }

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://files.test/put/" + key, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/get/" + key, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
