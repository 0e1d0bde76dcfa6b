package memory

import (
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"context"
	"errors"
	"sort"
)

type feedbackRepo struct{ s *state }

func (r *feedbackRepo) Create(_ context.Context, msg *domain.Message) (string, error) {
	if msg.TrainerID == "" || msg.TraineeID == "" || msg.SenderID == "" {
		return "", errors.New("message requires trainerId, traineeId and senderId")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, seq := r.s.next()
	msg.ID = id
	msg.Read = false
	msg.CreatedAt = r.s.now()
	r.s.feedback[id] = record[domain.Message]{seq: seq, doc: *msg}
	return id, nil
}

func (r *feedbackRepo) GetByID(_ context.Context, id string) (*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.feedback[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m := rec.doc
	return &m, nil
}

func (r *feedbackRepo) List(_ context.Context, filter domain.FeedbackFilter) ([]domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := make([]record[domain.Message], 0)
	for _, rec := range r.s.feedback {
		if filter.TrainerID != "" && rec.doc.TrainerID != filter.TrainerID {
			continue
		}
		if filter.TraineeID != "" && rec.doc.TraineeID != filter.TraineeID {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].doc.CreatedAt.Equal(recs[j].doc.CreatedAt) {
			return recs[i].doc.CreatedAt.After(recs[j].doc.CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})
	messages := make([]domain.Message, 0, len(recs))
	for _, rec := range recs {
		messages = append(messages, rec.doc)
	}
	return messages, nil
}

func (r *feedbackRepo) MarkRead(_ context.Context, trainerID, traineeID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, rec := range r.s.feedback {
		m := rec.doc
		if m.TrainerID == trainerID && m.TraineeID == traineeID && m.SenderID == traineeID && !m.Read {
			rec.doc.Read = true
			r.s.feedback[id] = rec
			n++
		}
	}
	return n, nil
}

func (r *feedbackRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.feedback[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.feedback, id)
	return nil
}

func (r *feedbackRepo) CountUnread(_ context.Context, trainerID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, rec := range r.s.feedback {
		m := rec.doc
		if m.TrainerID == trainerID && m.SenderID != trainerID && !m.Read {
			n++
		}
	}
	return n, nil
}
