package memory

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

type scheduleRepo struct{ db *DB }

func (r *scheduleRepo) Create(_ context.Context, s *model.Schedule) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if (s.UserID == nil) == (s.CourseID == nil) {
		return errors.Wrap(apperr.ErrInvalidArgument, "schedule needs exactly one owner")
	}
	for _, other := range r.db.t.schedules {
		if s.UserID != nil && other.UserID != nil && *other.UserID == *s.UserID {
			return errors.Wrap(apperr.ErrConflict, "user already has a schedule")
		}
		if s.CourseID != nil && other.CourseID != nil && *other.CourseID == *s.CourseID {
			return errors.Wrap(apperr.ErrConflict, "course already has a schedule")
		}
	}
	s.ID = r.db.t.next("schedules")
	r.db.t.schedules[s.ID] = *s
	return nil
}

func (r *scheduleRepo) find(match func(model.Schedule) bool) (model.Schedule, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, s := range r.db.t.schedules {
		if match(s) {
			return s, nil
		}
	}
	return model.Schedule{}, errors.Wrap(apperr.ErrNotFound, "schedule")
}

func (r *scheduleRepo) GetByID(_ context.Context, id uint64) (model.Schedule, error) {
	return r.find(func(s model.Schedule) bool { return s.ID == id })
}

func (r *scheduleRepo) GetByUser(_ context.Context, userID uint64) (model.Schedule, error) {
	return r.find(func(s model.Schedule) bool { return s.UserID != nil && *s.UserID == userID })
}

func (r *scheduleRepo) GetByCourse(_ context.Context, courseID uint64) (model.Schedule, error) {
	return r.find(func(s model.Schedule) bool { return s.CourseID != nil && *s.CourseID == courseID })
}

func (r *scheduleRepo) CreateItem(_ context.Context, it *model.ScheduleItem) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if it.TermID != nil {
		for _, other := range r.db.t.items {
			if other.TermID != nil && *other.TermID == *it.TermID {
				return errors.Wrap(apperr.ErrConflict, "term already has a schedule item")
			}
		}
	}
	it.ID = r.db.t.next("schedule_items")
	r.db.t.items[it.ID] = *it
	return nil
}

func (r *scheduleRepo) GetItemByTerm(_ context.Context, termID uint64) (model.ScheduleItem, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, it := range r.db.t.items {
		if it.TermID != nil && *it.TermID == termID {
			return it, nil
		}
	}
	return model.ScheduleItem{}, errors.Wrap(apperr.ErrNotFound, "schedule item")
}

func (r *scheduleRepo) AddItem(_ context.Context, scheduleID, itemID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.t.schedules[scheduleID]; !ok {
		return errors.Wrap(apperr.ErrNotFound, "schedule")
	}
	if _, ok := r.db.t.items[itemID]; !ok {
		return errors.Wrap(apperr.ErrNotFound, "schedule item")
	}
	r.db.t.entries[pair{scheduleID, itemID}] = struct{}{}
	return nil
}

func (r *scheduleRepo) ItemsBetween(_ context.Context, scheduleID uint64, from, to time.Time) ([]model.ScheduleItem, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.ScheduleItem, 0)
	for key := range r.db.t.entries {
		if key.a != scheduleID {
			continue
		}
		if it := r.db.t.items[key.b]; it.Overlaps(from, to) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
