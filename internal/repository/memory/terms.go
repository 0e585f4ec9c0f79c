package memory

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

type termRepo struct{ db *DB }

func (r *termRepo) Create(_ context.Context, t *model.Term) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.t.courses[t.CourseID]; !ok {
		return errors.Wrap(apperr.ErrNotFound, "course")
	}
	for _, rid := range t.RoomIDs {
		if _, ok := r.db.t.rooms[rid]; !ok {
			return errors.Wrap(apperr.ErrNotFound, "room")
		}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.ID = r.db.t.next("terms")
	stored := *t
	stored.RoomIDs = dedupe(t.RoomIDs)
	r.db.t.terms[t.ID] = stored
	return nil
}

func (r *termRepo) GetByID(_ context.Context, id uint64) (model.Term, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.t.terms[id]
	if !ok {
		return model.Term{}, errors.Wrap(apperr.ErrNotFound, "term")
	}
	t.RoomIDs = ids(t.RoomIDs)
	return t, nil
}

func (r *termRepo) ListByCourse(_ context.Context, courseID uint64) ([]model.Term, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.Term, 0)
	for _, t := range r.db.t.terms {
		if t.CourseID == courseID {
			t.RoomIDs = []uint64{}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *termRepo) RegisterStudent(_ context.Context, termID, studentID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.t.terms[termID]; !ok {
		return errors.Wrap(apperr.ErrNotFound, "term")
	}
	r.db.t.termStudents[pair{termID, studentID}] = struct{}{}
	return nil
}

func (r *termRepo) ListStudentIDs(_ context.Context, termID uint64) ([]uint64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]uint64, 0)
	for key := range r.db.t.termStudents {
		if key.a == termID {
			out = append(out, key.b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
