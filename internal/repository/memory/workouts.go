package memory

import (
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"context"
	"errors"
	"sort"
)

type workoutRepo struct{ s *state }

func copyWorkout(w domain.Workout) domain.Workout {
	w.ClonedFrom = cloneString(w.ClonedFrom)
	return w
}

func (r *workoutRepo) Create(_ context.Context, workout *domain.Workout) (string, error) {
	if workout.UserID == "" || workout.Name == "" {
		return "", errors.New("workout requires userId and name")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.insertLocked(workout); err != nil {
		return "", err
	}
	return workout.ID, nil
}

// insertLocked enforces the one-clone-per-source rule the Mongo driver gets
// from its unique index.
func (r *workoutRepo) insertLocked(workout *domain.Workout) error {
	if workout.ClonedFrom != nil {
		for _, rec := range r.s.workouts {
			if rec.doc.UserID == workout.UserID && rec.doc.ClonedFrom != nil && *rec.doc.ClonedFrom == *workout.ClonedFrom {
				return repository.ErrDuplicate
			}
		}
	}
	id, seq := r.s.next()
	now := r.s.now()
	workout.ID = id
	workout.CreatedAt = now
	workout.UpdatedAt = now
	r.s.workouts[id] = record[domain.Workout]{seq: seq, doc: copyWorkout(*workout)}
	return nil
}

func (r *workoutRepo) GetByID(_ context.Context, id string) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w := copyWorkout(rec.doc)
	return &w, nil
}

func (r *workoutRepo) ListByOwner(_ context.Context, userID string) ([]domain.Workout, error) {
	return r.list(func(w *domain.Workout) bool { return w.UserID == userID }, false), nil
}

func (r *workoutRepo) ListPublic(_ context.Context) ([]domain.Workout, error) {
	return r.list(func(w *domain.Workout) bool { return w.IsPublic }, true), nil
}

func (r *workoutRepo) list(match func(*domain.Workout) bool, featuredFirst bool) []domain.Workout {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := make([]record[domain.Workout], 0)
	for _, rec := range r.s.workouts {
		if match(&rec.doc) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if featuredFirst && a.doc.IsFeatured != b.doc.IsFeatured {
			return a.doc.IsFeatured
		}
		if !a.doc.CreatedAt.Equal(b.doc.CreatedAt) {
			return a.doc.CreatedAt.After(b.doc.CreatedAt)
		}
		return a.seq > b.seq
	})
	workouts := make([]domain.Workout, 0, len(recs))
	for _, rec := range recs {
		workouts = append(workouts, copyWorkout(rec.doc))
	}
	return workouts
}

func (r *workoutRepo) Update(_ context.Context, id string, patch domain.WorkoutPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	w := &rec.doc
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Description != nil {
		w.Description = *patch.Description
	}
	if patch.Difficulty != nil {
		w.Difficulty = *patch.Difficulty
	}
	if patch.Recommendations != nil {
		w.Recommendations = *patch.Recommendations
	}
	if patch.IsPublic != nil {
		w.IsPublic = *patch.IsPublic
	}
	if patch.IsFeatured != nil {
		w.IsFeatured = *patch.IsFeatured
	}
	w.UpdatedAt = r.s.now()
	r.s.workouts[id] = rec
	return nil
}

func (r *workoutRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	for exID, rec := range r.s.exercises {
		if rec.doc.WorkoutID == id {
			delete(r.s.exercises, exID)
		}
	}
	delete(r.s.workouts, id)
	return nil
}

func (r *workoutRepo) FindClone(_ context.Context, userID, sourceID string) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.workouts {
		if rec.doc.UserID == userID && rec.doc.ClonedFrom != nil && *rec.doc.ClonedFrom == sourceID {
			w := copyWorkout(rec.doc)
			return &w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *workoutRepo) CreateWithExercises(_ context.Context, workout *domain.Workout, exercises []domain.Exercise) (string, error) {
	if workout.UserID == "" || workout.Name == "" {
		return "", errors.New("workout requires userId and name")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.insertLocked(workout); err != nil {
		return "", err
	}
	for _, ex := range exercises {
		id, seq := r.s.next()
		ex.ID = id
		ex.WorkoutID = workout.ID
		ex.CreatedAt = workout.CreatedAt
		r.s.exercises[id] = record[domain.Exercise]{seq: seq, doc: ex}
	}
	return workout.ID, nil
}

func (r *workoutRepo) CountByOwner(_ context.Context, userID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, rec := range r.s.workouts {
		if rec.doc.UserID == userID {
			n++
		}
	}
	return n, nil
}
