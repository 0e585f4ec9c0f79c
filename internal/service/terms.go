package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

type TermService struct {
	st        store.Store
	schedules *ScheduleService
}

type TermInput struct {
	Kind         model.TermKind
	Name         string
	Description  string
	MinPoints    uint32
	MaxPoints    uint32
	Mandatory    bool
	Date         time.Time
	DurationMin  uint32
	SupervisorID *uint64
	RoomIDs      []uint64
}

// CreateTerm adds a term to an approved course. Mandatory terms register
// every approved student first. The term, its registrations and the
// schedule fan-out commit together.
func (s *TermService) CreateTerm(ctx context.Context, actor Actor, courseID uint64, in TermInput) (model.Term, error) {
	if !in.Kind.Valid() {
		return model.Term{}, errors.Wrapf(apperr.ErrInvalidArgument, "unknown term kind %q", in.Kind)
	}
	if in.MinPoints > in.MaxPoints {
		return model.Term{}, errors.Wrap(apperr.ErrInvalidArgument, "min_points exceeds max_points")
	}
	if in.DurationMin == 0 {
		return model.Term{}, errors.Wrap(apperr.ErrInvalidArgument, "duration must be positive")
	}
	t := model.Term{
		CourseID:     courseID,
		Kind:         in.Kind,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		MinPoints:    in.MinPoints,
		MaxPoints:    in.MaxPoints,
		Mandatory:    in.Mandatory,
		Date:         in.Date.UTC(),
		DurationMin:  in.DurationMin,
		SupervisorID: in.SupervisorID,
		RoomIDs:      dedupeIDs(in.RoomIDs),
	}
	err := s.st.InTx(ctx, func(tx store.Store) error {
		c, err := tx.Courses().GetForUpdate(ctx, courseID)
		if err != nil {
			return err
		}
		if err := requireStaff(actor, c); err != nil {
			return err
		}
		if c.Status != model.StatusApproved {
			return errors.Wrap(apperr.ErrConflict, "course is not approved")
		}
		if t.SupervisorID != nil && !c.Teaches(*t.SupervisorID) {
			return errors.Wrap(apperr.ErrInvalidArgument, "term supervisor must teach the course")
		}
		for _, rid := range t.RoomIDs {
			if _, err := tx.Rooms().GetByID(ctx, rid); err != nil {
				return err
			}
		}
		if err := tx.Terms().Create(ctx, &t); err != nil {
			return err
		}
		if t.Mandatory {
			approved := model.StatusApproved
			enrolled, err := tx.Courses().ListEnrollments(ctx, courseID, &approved)
			if err != nil {
				return err
			}
			for _, sc := range enrolled {
				if err := tx.Terms().RegisterStudent(ctx, t.ID, sc.StudentID); err != nil {
					return err
				}
			}
		}
		_, err = s.schedules.OnTermCreated(ctx, tx, t, c)
		return err
	})
	if err != nil {
		return model.Term{}, err
	}
	return t, nil
}

// RegisterForTerm registers an approved student of the term's course and
// puts the term's item into the student's schedule.
func (s *TermService) RegisterForTerm(ctx context.Context, actor Actor, termID uint64) error {
	return s.st.InTx(ctx, func(tx store.Store) error {
		t, err := tx.Terms().GetByID(ctx, termID)
		if err != nil {
			return err
		}
		sc, err := tx.Courses().GetEnrollment(ctx, t.CourseID, actor.ID)
		if errors.Is(err, apperr.ErrNotFound) || (err == nil && sc.Status != model.StatusApproved) {
			return errors.Wrap(apperr.ErrUnauthorized, "not an approved student of the course")
		}
		if err != nil {
			return err
		}
		if err := tx.Terms().RegisterStudent(ctx, termID, actor.ID); err != nil {
			return err
		}
		item, err := tx.Schedules().GetItemByTerm(ctx, termID)
		if err != nil {
			return err
		}
		return s.schedules.addToUser(ctx, tx, actor.ID, item.ID)
	})
}

func (s *TermService) ListByCourse(ctx context.Context, courseID uint64) ([]model.Term, error) {
	if _, err := s.st.Courses().GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.st.Terms().ListByCourse(ctx, courseID)
}
