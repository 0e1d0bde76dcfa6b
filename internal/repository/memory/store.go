// Package memory is an in-process repository driver. Every repository of one
// Store shares a single lock, so writes that span documents (delete a workout
// with its exercises, clone, bulk mark-read) are applied atomically.
package memory

import (
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type state struct {
	mu sync.RWMutex

	now func() time.Time
	seq int64

	accounts    map[string]domain.Account
	users       map[string]domain.User
	workouts    map[string]record[domain.Workout]
	exercises   map[string]record[domain.Exercise]
	feedback    map[string]record[domain.Message]
	completions map[string]record[domain.CompletionRecord]
}

// record keeps the insertion sequence next to a document; it breaks ties
// between equal timestamps.
type record[T any] struct {
	seq int64
	doc T
}

// Option configures a Store.
type Option func(*state)

// WithClock replaces time.Now as the source of server timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *state) { s.now = now }
}

// NewStore returns a repository.Store backed by process memory.
func NewStore(opts ...Option) repository.Store {
	s := &state{
		now:         func() time.Time { return time.Now().UTC() },
		accounts:    map[string]domain.Account{},
		users:       map[string]domain.User{},
		workouts:    map[string]record[domain.Workout]{},
		exercises:   map[string]record[domain.Exercise]{},
		feedback:    map[string]record[domain.Message]{},
		completions: map[string]record[domain.CompletionRecord]{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return repository.Store{
		Accounts:  &accountRepo{s},
		Users:     &userRepo{s},
		Workouts:  &workoutRepo{s},
		Exercises: &exerciseRepo{s},
		Feedback:  &feedbackRepo{s},
		Progress:  &progressRepo{s},
	}
}

// next returns a fresh id and insertion sequence. Callers hold mu.
func (s *state) next() (string, int64) {
	s.seq++
	return primitive.NewObjectID().Hex(), s.seq
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
