package service

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

// ScheduleService propagates term items into schedules and serves week
// views.
type ScheduleService struct {
	st  store.Store
	now func() time.Time
}

// OnTermCreated snapshots the term into one ScheduleItem and links it into
// the schedule of every registered student, every teacher of the course and
// the course itself. Each schedule gets the item once; parties without a
// schedule are skipped. tx must be the caller's transaction.
func (s *ScheduleService) OnTermCreated(ctx context.Context, tx store.Store, t model.Term, c model.Course) (model.ScheduleItem, error) {
	termID := t.ID
	item := model.ScheduleItem{
		TermID:         &termID,
		Kind:           t.Kind,
		Start:          t.Date,
		End:            t.End(),
		CourseName:     c.Name,
		CourseShortcut: c.Shortcut,
	}
	if err := tx.Schedules().CreateItem(ctx, &item); err != nil {
		return item, err
	}

	students, err := tx.Terms().ListStudentIDs(ctx, t.ID)
	if err != nil {
		return item, err
	}
	users := append(append([]uint64{c.SupervisorID}, c.TeacherIDs...), students...)
	for _, uid := range dedupeIDs(users) {
		if err := s.addToUser(ctx, tx, uid, item.ID); err != nil {
			return item, err
		}
	}

	cs, err := tx.Schedules().GetByCourse(ctx, c.ID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return item, nil
	case err != nil:
		return item, err
	}
	return item, tx.Schedules().AddItem(ctx, cs.ID, item.ID)
}

func (s *ScheduleService) addToUser(ctx context.Context, tx store.Store, userID, itemID uint64) error {
	us, err := tx.Schedules().GetByUser(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Schedules().AddItem(ctx, us.ID, itemID)
}

// ParseWeek parses a YYYY-MM-DD week start. An empty string means the
// Monday of the current week.
func (s *ScheduleService) ParseWeek(raw string) (time.Time, error) {
	if raw == "" {
		now := s.now()
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset), nil
	}
	w, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.Wrapf(apperr.ErrInvalidArgument, "week %q is not a YYYY-MM-DD date", raw)
	}
	return w, nil
}

// WeekView returns the items of a schedule overlapping the week starting at
// weekStart, which must be a Monday.
func (s *ScheduleService) WeekView(ctx context.Context, scheduleID uint64, weekStart time.Time) ([]model.ScheduleItem, error) {
	if weekStart.Weekday() != time.Monday {
		return nil, errors.Wrapf(apperr.ErrInvalidArgument, "week start %s is a %s, not a Monday",
			weekStart.Format(time.DateOnly), weekStart.Weekday())
	}
	return s.st.Schedules().ItemsBetween(ctx, scheduleID, weekStart, weekStart.AddDate(0, 0, 7))
}

func (s *ScheduleService) UserWeek(ctx context.Context, userID uint64, weekStart time.Time) ([]model.ScheduleItem, error) {
	sched, err := s.st.Schedules().GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.WeekView(ctx, sched.ID, weekStart)
}

func (s *ScheduleService) CourseWeek(ctx context.Context, courseID uint64, weekStart time.Time) ([]model.ScheduleItem, error) {
	sched, err := s.st.Schedules().GetByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return s.WeekView(ctx, sched.ID, weekStart)
}

// CourseSchedule is one course's week view.
type CourseSchedule struct {
	CourseID       uint64               `json:"course_id"`
	CourseName     string               `json:"course_name"`
	CourseShortcut string               `json:"course_shortcut"`
	Items          []model.ScheduleItem `json:"items"`
}

// MyCoursesWeek returns week views of every course the caller studies
// (approved enrollment) or teaches, ordered by course id.
func (s *ScheduleService) MyCoursesWeek(ctx context.Context, actor Actor, weekStart time.Time) ([]CourseSchedule, error) {
	if weekStart.Weekday() != time.Monday {
		return nil, errors.Wrapf(apperr.ErrInvalidArgument, "week start %s is not a Monday", weekStart.Format(time.DateOnly))
	}
	studied, err := s.st.Courses().ListEnrolledCourseIDs(ctx, actor.ID, model.StatusApproved)
	if err != nil {
		return nil, err
	}
	taught, err := s.st.Courses().ListTaughtBy(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	ids := dedupeIDs(append(studied, taught...))
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]CourseSchedule, 0, len(ids))
	for _, id := range ids {
		c, err := s.st.Courses().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		sched, err := s.st.Schedules().GetByCourse(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items, err := s.WeekView(ctx, sched.ID, weekStart)
		if err != nil {
			return nil, err
		}
		out = append(out, CourseSchedule{CourseID: c.ID, CourseName: c.Name, CourseShortcut: c.Shortcut, Items: items})
	}
	return out, nil
}
