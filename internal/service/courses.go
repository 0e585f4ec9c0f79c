package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

// CourseService covers course lookups, the teacher set and student
// enrollment.
type CourseService struct {
	st store.Store
}

func (s *CourseService) Get(ctx context.Context, id uint64) (model.Course, error) {
	return s.st.Courses().GetByID(ctx, id)
}

func (s *CourseService) ListApproved(ctx context.Context) ([]model.Course, error) {
	return s.st.Courses().ListByStatus(ctx, model.StatusApproved)
}

// requireStaff allows admins and anyone who supervises or teaches c.
func requireStaff(actor Actor, c model.Course) error {
	if actor.IsAdmin() || c.Teaches(actor.ID) {
		return nil
	}
	return errors.Wrap(apperr.ErrUnauthorized, "not a teacher of this course")
}

// AddTeacher adds a TEACHER user to the course. Only the supervisor or an
// admin may do so.
func (s *CourseService) AddTeacher(ctx context.Context, actor Actor, courseID, teacherID uint64) (model.Course, error) {
	var c model.Course
	err := s.st.InTx(ctx, func(tx store.Store) error {
		var err error
		if c, err = tx.Courses().GetForUpdate(ctx, courseID); err != nil {
			return err
		}
		if !actor.IsAdmin() && c.SupervisorID != actor.ID {
			return errors.Wrap(apperr.ErrUnauthorized, "only the supervisor can add teachers")
		}
		t, err := tx.Users().GetByID(ctx, teacherID)
		if err != nil {
			return err
		}
		if t.Role != model.RoleTeacher {
			return errors.Wrapf(apperr.ErrInvalidArgument, "user %d is not a teacher", teacherID)
		}
		if err := tx.Courses().AddTeacher(ctx, courseID, teacherID); err != nil {
			return err
		}
		c, err = tx.Courses().GetByID(ctx, courseID)
		return err
	})
	return c, err
}

// Register enrolls the caller. Autoregister courses approve immediately
// while capacity lasts; the others leave the registration PENDING.
func (s *CourseService) Register(ctx context.Context, actor Actor, courseID uint64) (model.StudentCourse, error) {
	var sc model.StudentCourse
	err := s.st.InTx(ctx, func(tx store.Store) error {
		c, err := tx.Courses().GetForUpdate(ctx, courseID)
		if err != nil {
			return err
		}
		if c.Status != model.StatusApproved {
			return errors.Wrap(apperr.ErrConflict, "course is not open for registration")
		}
		if c.Teaches(actor.ID) {
			return errors.Wrap(apperr.ErrConflict, "teachers cannot register for their own course")
		}
		if _, err := tx.Courses().GetEnrollment(ctx, courseID, actor.ID); err == nil {
			return errors.Wrap(apperr.ErrConflict, "already registered")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		sc = model.StudentCourse{StudentID: actor.ID, CourseID: courseID, Status: model.StatusPending}
		if c.Autoregister {
			if err := checkCapacity(ctx, tx, c); err != nil {
				return err
			}
			sc.Status = model.StatusApproved
		}
		return tx.Courses().CreateEnrollment(ctx, &sc)
	})
	return sc, err
}

func checkCapacity(ctx context.Context, tx store.Store, c model.Course) error {
	n, err := tx.Courses().CountEnrollments(ctx, c.ID, model.StatusApproved)
	if err != nil {
		return err
	}
	if uint32(n) >= c.Capacity {
		return errors.Wrapf(apperr.ErrConflict, "course %s is full", c.Shortcut)
	}
	return nil
}

// DecideRegistration approves or rejects a PENDING registration.
func (s *CourseService) DecideRegistration(ctx context.Context, actor Actor, courseID, studentID uint64, approve bool) (model.StudentCourse, error) {
	var sc model.StudentCourse
	err := s.st.InTx(ctx, func(tx store.Store) error {
		c, err := tx.Courses().GetForUpdate(ctx, courseID)
		if err != nil {
			return err
		}
		if err := requireStaff(actor, c); err != nil {
			return err
		}
		if sc, err = tx.Courses().GetEnrollment(ctx, courseID, studentID); err != nil {
			return err
		}
		if sc.Status.Terminal() {
			return errors.Wrap(apperr.ErrConflict, "registration already decided")
		}
		sc.Status = model.StatusRejected
		if approve {
			if err := checkCapacity(ctx, tx, c); err != nil {
				return err
			}
			sc.Status = model.StatusApproved
		}
		return tx.Courses().SetEnrollmentStatus(ctx, courseID, studentID, sc.Status)
	})
	return sc, err
}

func (s *CourseService) ListStudents(ctx context.Context, actor Actor, courseID uint64) ([]model.StudentCourse, error) {
	c, err := s.st.Courses().GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireStaff(actor, c); err != nil {
		return nil, err
	}
	return s.st.Courses().ListEnrollments(ctx, courseID, nil)
}
