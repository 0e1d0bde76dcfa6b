package memory

import (
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"context"
	"errors"
	"sort"
)

type exerciseRepo struct{ s *state }

func (r *exerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (string, error) {
	if exercise.Name == "" || exercise.WorkoutID == "" {
		return "", errors.New("exercise name and workout ID are required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, seq := r.s.next()
	exercise.ID = id
	exercise.CreatedAt = r.s.now()
	r.s.exercises[id] = record[domain.Exercise]{seq: seq, doc: *exercise}
	return id, nil
}

func (r *exerciseRepo) Delete(_ context.Context, workoutID, exerciseID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.exercises[exerciseID]
	if !ok || rec.doc.WorkoutID != workoutID {
		return repository.ErrNotFound
	}
	delete(r.s.exercises, exerciseID)
	return nil
}

func (r *exerciseRepo) ListByWorkout(_ context.Context, workoutID string) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := make([]record[domain.Exercise], 0)
	for _, rec := range r.s.exercises {
		if rec.doc.WorkoutID == workoutID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].doc.CreatedAt.Equal(recs[j].doc.CreatedAt) {
			return recs[i].doc.CreatedAt.Before(recs[j].doc.CreatedAt)
		}
		return recs[i].seq < recs[j].seq
	})
	exercises := make([]domain.Exercise, 0, len(recs))
	for _, rec := range recs {
		exercises = append(exercises, rec.doc)
	}
	return exercises, nil
}

func (r *exerciseRepo) CountByWorkout(_ context.Context, workoutID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, rec := range r.s.exercises {
		if rec.doc.WorkoutID == workoutID {
			n++
		}
	}
	return n, nil
}
