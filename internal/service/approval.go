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

// ApprovalService runs the PENDING -> APPROVED | REJECTED workflow for
// courses and room requests. Role checks happen at the HTTP boundary.
// Deciding on an entity that is already terminal is a conflict.
type ApprovalService struct {
	st  store.Store
	now func() time.Time
}

type CourseInput struct {
	Name           string
	Shortcut       string
	Description    string
	PriceCents     uint32
	CompletionType model.CompletionType
	Capacity       uint32
	Autoregister   bool
}

// CreateCourse creates a PENDING course supervised by the caller together
// with the course's own schedule.
func (s *ApprovalService) CreateCourse(ctx context.Context, actor Actor, in CourseInput) (model.Course, error) {
	if actor.Role != model.RoleTeacher && actor.Role != model.RoleAdmin {
		return model.Course{}, errors.Wrap(apperr.ErrUnauthorized, "only teachers can create courses")
	}
	if !in.CompletionType.Valid() {
		return model.Course{}, errors.Wrapf(apperr.ErrInvalidArgument, "unknown completion type %q", in.CompletionType)
	}
	c := model.Course{
		Name:           strings.TrimSpace(in.Name),
		Shortcut:       strings.ToUpper(strings.TrimSpace(in.Shortcut)),
		Description:    in.Description,
		PriceCents:     in.PriceCents,
		CompletionType: in.CompletionType,
		Capacity:       in.Capacity,
		Autoregister:   in.Autoregister,
		Status:         model.StatusPending,
		SupervisorID:   actor.ID,
		TeacherIDs:     []uint64{},
		CreatedAt:      s.now(),
	}
	err := s.st.InTx(ctx, func(tx store.Store) error {
		if err := tx.Courses().Create(ctx, &c); err != nil {
			return err
		}
		return tx.Schedules().Create(ctx, &model.Schedule{CourseID: &c.ID})
	})
	if err != nil {
		return model.Course{}, err
	}
	return c, nil
}

func (s *ApprovalService) PendingCourses(ctx context.Context) ([]model.Course, error) {
	return s.st.Courses().ListByStatus(ctx, model.StatusPending)
}

func (s *ApprovalService) ApproveCourse(ctx context.Context, id uint64) (model.Course, error) {
	return s.decideCourse(ctx, id, model.StatusApproved)
}

func (s *ApprovalService) RejectCourse(ctx context.Context, id uint64) (model.Course, error) {
	return s.decideCourse(ctx, id, model.StatusRejected)
}

func (s *ApprovalService) decideCourse(ctx context.Context, id uint64, to model.ApprovalStatus) (model.Course, error) {
	var c model.Course
	err := s.st.InTx(ctx, func(tx store.Store) error {
		var err error
		if c, err = tx.Courses().GetForUpdate(ctx, id); err != nil {
			return err
		}
		if c.Status.Terminal() {
			return errors.Wrapf(apperr.ErrConflict, "course already %s", strings.ToLower(string(c.Status)))
		}
		c.Status = to
		return tx.Courses().SetStatus(ctx, id, to)
	})
	return c, err
}

type RoomRequestInput struct {
	Kind      model.RoomKind
	Name      string
	Building  string
	Floor     int32
	Capacity  uint32
	PCSupport bool
}

// SubmitRoomRequest files a PENDING room request. The requested shortcut
// must not belong to an existing room.
func (s *ApprovalService) SubmitRoomRequest(ctx context.Context, actor Actor, in RoomRequestInput) (model.RoomRequest, error) {
	if !in.Kind.Valid() {
		return model.RoomRequest{}, errors.Wrapf(apperr.ErrInvalidArgument, "unknown room kind %q", in.Kind)
	}
	if in.PCSupport && in.Kind != model.RoomLab {
		return model.RoomRequest{}, errors.Wrap(apperr.ErrInvalidArgument, "pc_support applies to LAB rooms only")
	}
	rq := model.RoomRequest{
		Kind:        in.Kind,
		Name:        strings.ToUpper(strings.TrimSpace(in.Name)),
		Building:    strings.TrimSpace(in.Building),
		Floor:       in.Floor,
		Capacity:    in.Capacity,
		PCSupport:   in.PCSupport,
		RequesterID: actor.ID,
		Status:      model.StatusPending,
		CreatedAt:   s.now(),
	}
	if _, err := s.st.Rooms().GetByShortcut(ctx, rq.Name); err == nil {
		return model.RoomRequest{}, errors.Wrapf(apperr.ErrConflict, "room %s already exists", rq.Name)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return model.RoomRequest{}, err
	}
	if err := s.st.Rooms().CreateRequest(ctx, &rq); err != nil {
		return model.RoomRequest{}, err
	}
	return rq, nil
}

func (s *ApprovalService) PendingRoomRequests(ctx context.Context) ([]model.RoomRequest, error) {
	return s.st.Rooms().ListRequestsByStatus(ctx, model.StatusPending)
}

// ApproveRoomRequest materializes the requested room and records its id on
// the request, which is kept as the approval record.
func (s *ApprovalService) ApproveRoomRequest(ctx context.Context, id uint64) (model.Room, error) {
	var room model.Room
	err := s.st.InTx(ctx, func(tx store.Store) error {
		rq, err := tx.Rooms().GetRequestForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rq.Status.Terminal() {
			return errors.Wrapf(apperr.ErrConflict, "room request already %s", strings.ToLower(string(rq.Status)))
		}
		room = rq.Materialize(s.now())
		if err := tx.Rooms().Create(ctx, &room); err != nil {
			return err
		}
		return tx.Rooms().ResolveRequest(ctx, id, model.StatusApproved, &room.ID)
	})
	if err != nil {
		return model.Room{}, err
	}
	return room, nil
}

func (s *ApprovalService) RejectRoomRequest(ctx context.Context, id uint64) (model.RoomRequest, error) {
	var rq model.RoomRequest
	err := s.st.InTx(ctx, func(tx store.Store) error {
		var err error
		if rq, err = tx.Rooms().GetRequestForUpdate(ctx, id); err != nil {
			return err
		}
		if rq.Status.Terminal() {
			return errors.Wrapf(apperr.ErrConflict, "room request already %s", strings.ToLower(string(rq.Status)))
		}
		rq.Status = model.StatusRejected
		return tx.Rooms().ResolveRequest(ctx, id, model.StatusRejected, nil)
	})
	return rq, err
}
