package memory

import (
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"context"
	"errors"
	"sort"
)

type progressRepo struct{ s *state }

func (r *progressRepo) Create(_ context.Context, rec *domain.CompletionRecord) (string, error) {
	if rec.UserID == "" || rec.WorkoutID == "" {
		return "", errors.New("completion record requires userId and workoutId")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, seq := r.s.next()
	rec.ID = id
	rec.CompletedAt = r.s.now()
	stored := *rec
	stored.Exercises = append([]domain.Exercise{}, rec.Exercises...)
	r.s.completions[id] = record[domain.CompletionRecord]{seq: seq, doc: stored}
	return id, nil
}

func (r *progressRepo) History(_ context.Context, userID string, limit int64) ([]domain.CompletionRecord, error) {
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := make([]record[domain.CompletionRecord], 0)
	for _, rec := range r.s.completions {
		if rec.doc.UserID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].doc.CompletedAt.Equal(recs[j].doc.CompletedAt) {
			return recs[i].doc.CompletedAt.After(recs[j].doc.CompletedAt)
		}
		return recs[i].seq > recs[j].seq
	})
	if int64(len(recs)) > limit {
		recs = recs[:limit]
	}
	history := make([]domain.CompletionRecord, 0, len(recs))
	for _, rec := range recs {
		history = append(history, rec.doc)
	}
	return history, nil
}

func (r *progressRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, rec := range r.s.completions {
		if rec.doc.UserID == userID {
			n++
		}
	}
	return n, nil
}
