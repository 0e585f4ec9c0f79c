package memory

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

type courseRepo struct{ db *DB }

func (r *courseRepo) Create(_ context.Context, c *model.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.t.courses {
		if other.Shortcut == c.Shortcut {
			return errors.Wrap(apperr.ErrConflict, "course shortcut already taken")
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = model.StatusPending
	}
	c.ID = r.db.t.next("courses")
	stored := *c
	stored.TeacherIDs = dedupe(c.TeacherIDs)
	r.db.t.courses[c.ID] = stored
	return nil
}

func dedupe(in []uint64) []uint64 {
	seen := map[uint64]bool{}
	out := make([]uint64, 0, len(in))
	for _, id := range in {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *courseRepo) GetByID(_ context.Context, id uint64) (model.Course, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.t.courses[id]
	if !ok {
		return model.Course{}, errors.Wrap(apperr.ErrNotFound, "course")
	}
	c.TeacherIDs = ids(c.TeacherIDs)
	return c, nil
}

// GetForUpdate needs no row lock here: transactions are serialized.
func (r *courseRepo) GetForUpdate(ctx context.Context, id uint64) (model.Course, error) {
	return r.GetByID(ctx, id)
}

func (r *courseRepo) ListByStatus(_ context.Context, status model.ApprovalStatus) ([]model.Course, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.Course, 0)
	for _, c := range r.db.t.courses {
		if c.Status == status {
			c.TeacherIDs = []uint64{}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *courseRepo) SetStatus(_ context.Context, id uint64, status model.ApprovalStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.t.courses[id]
	if !ok {
		return errors.Wrap(apperr.ErrNotFound, "course")
	}
	c.Status = status
	r.db.t.courses[id] = c
	return nil
}

func (r *courseRepo) AddTeacher(_ context.Context, courseID, teacherID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.t.courses[courseID]
	if !ok {
		return errors.Wrap(apperr.ErrNotFound, "course")
	}
	c.TeacherIDs = dedupe(append(ids(c.TeacherIDs), teacherID))
	r.db.t.courses[courseID] = c
	return nil
}

func (r *courseRepo) ListTaughtBy(_ context.Context, userID uint64) ([]uint64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedIDs(r.db.t.courses, func(c model.Course) bool { return c.Teaches(userID) }), nil
}

func (r *courseRepo) CreateEnrollment(_ context.Context, sc *model.StudentCourse) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := pair{sc.CourseID, sc.StudentID}
	if _, ok := r.db.t.enrollments[key]; ok {
		return errors.Wrap(apperr.ErrConflict, "enrollment")
	}
	if _, ok := r.db.t.courses[sc.CourseID]; !ok {
		return errors.Wrap(apperr.ErrNotFound, "course")
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now().UTC()
	}
	r.db.t.enrollments[key] = *sc
	return nil
}

func (r *courseRepo) GetEnrollment(_ context.Context, courseID, studentID uint64) (model.StudentCourse, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	sc, ok := r.db.t.enrollments[pair{courseID, studentID}]
	if !ok {
		return model.StudentCourse{}, errors.Wrap(apperr.ErrNotFound, "enrollment")
	}
	return sc, nil
}

func (r *courseRepo) SetEnrollmentStatus(_ context.Context, courseID, studentID uint64, status model.ApprovalStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := pair{courseID, studentID}
	sc, ok := r.db.t.enrollments[key]
	if !ok {
		return errors.Wrap(apperr.ErrNotFound, "enrollment")
	}
	sc.Status = status
	r.db.t.enrollments[key] = sc
	return nil
}

func (r *courseRepo) ListEnrollments(_ context.Context, courseID uint64, status *model.ApprovalStatus) ([]model.StudentCourse, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.StudentCourse, 0)
	for key, sc := range r.db.t.enrollments {
		if key.a == courseID && (status == nil || sc.Status == *status) {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (r *courseRepo) CountEnrollments(_ context.Context, courseID uint64, status model.ApprovalStatus) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n := 0
	for key, sc := range r.db.t.enrollments {
		if key.a == courseID && sc.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *courseRepo) ListEnrolledCourseIDs(_ context.Context, studentID uint64, status model.ApprovalStatus) ([]uint64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]uint64, 0)
	for key, sc := range r.db.t.enrollments {
		if key.b == studentID && sc.Status == status {
			out = append(out, key.a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
