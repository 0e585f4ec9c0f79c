package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

// courseWithStudents sets up an approved course supervised by sup, taught
// by extra teachers, with the given students approved.
func (h *harness) courseWithStudents(t *testing.T, sup model.User, teachers []model.User, students []model.User) model.Course {
	t.Helper()
	ctx := context.Background()
	c := h.approvedCourse(t, sup, "IPK", 100, true)
	for _, tc := range teachers {
		_, err := h.svc.Courses.AddTeacher(ctx, actorOf(sup), c.ID, tc.ID)
		require.NoError(t, err)
	}
	for _, s := range students {
		_, err := h.svc.Courses.Register(ctx, actorOf(s), c.ID)
		require.NoError(t, err)
	}
	c, err := h.svc.Courses.Get(ctx, c.ID)
	require.NoError(t, err)
	return c
}

func TestMandatoryTermPropagatesToEveryParty(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sup := h.user(t, "sup", model.RoleTeacher)
	t2 := h.user(t, "t2", model.RoleTeacher)
	students := []model.User{h.user(t, "s1", model.RoleUser), h.user(t, "s2", model.RoleUser), h.user(t, "s3", model.RoleUser)}
	outsider := h.user(t, "outsider", model.RoleUser)
	c := h.courseWithStudents(t, sup, []model.User{t2}, students)

	term, err := h.svc.Terms.CreateTerm(ctx, actorOf(sup), c.ID, TermInput{
		Kind: model.TermLecture, Name: "Lecture 1", Mandatory: true,
		Date: monday.Add(10 * time.Hour), DurationMin: 110,
	})
	require.NoError(t, err)

	registered, err := h.st.Terms().ListStudentIDs(ctx, term.ID)
	require.NoError(t, err)
	assert.Len(t, registered, 3)

	item, err := h.st.Schedules().GetItemByTerm(ctx, term.ID)
	require.NoError(t, err)
	assert.Equal(t, term.Date.Add(110*time.Minute), item.End)
	assert.Equal(t, "IPK", item.CourseShortcut)

	// k=3 students, m=2 teachers (supervisor included) and the course schedule
	reached := 0
	for _, u := range append([]model.User{sup, t2, outsider}, students...) {
		sched, err := h.st.Schedules().GetByUser(ctx, u.ID)
		require.NoError(t, err)
		n := h.scheduleItemCount(t, sched.ID)
		if u.ID != outsider.ID {
			assert.Equal(t, 1, n, u.Username)
		}
		reached += n
	}
	cs, err := h.st.Schedules().GetByCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, h.scheduleItemCount(t, cs.ID))
	reached += h.scheduleItemCount(t, cs.ID)
	assert.Equal(t, 3+2+1, reached)

	outSched, err := h.st.Schedules().GetByUser(ctx, outsider.ID)
	require.NoError(t, err)
	assert.Zero(t, h.scheduleItemCount(t, outSched.ID))
}

func TestOptionalTermReachesStaffOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sup := h.user(t, "sup", model.RoleTeacher)
	student := h.user(t, "s1", model.RoleUser)
	c := h.courseWithStudents(t, sup, nil, []model.User{student})

	term, err := h.svc.Terms.CreateTerm(ctx, actorOf(sup), c.ID, TermInput{
		Kind: model.TermExam, Name: "Final", Date: monday.Add(34 * time.Hour), DurationMin: 120, MaxPoints: 60,
	})
	require.NoError(t, err)

	ss, err := h.st.Schedules().GetByUser(ctx, student.ID)
	require.NoError(t, err)
	assert.Zero(t, h.scheduleItemCount(t, ss.ID))

	require.NoError(t, h.svc.Terms.RegisterForTerm(ctx, actorOf(student), term.ID))
	require.NoError(t, h.svc.Terms.RegisterForTerm(ctx, actorOf(student), term.ID))
	assert.Equal(t, 1, h.scheduleItemCount(t, ss.ID))

	outsider := h.user(t, "outsider", model.RoleUser)
	err = h.svc.Terms.RegisterForTerm(ctx, actorOf(outsider), term.ID)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestPropagationCountsEachScheduleOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sup := h.user(t, "sup", model.RoleTeacher)
	t2 := h.user(t, "t2", model.RoleTeacher)
	students := []model.User{h.user(t, "s1", model.RoleUser), h.user(t, "s2", model.RoleUser)}
	c := h.courseWithStudents(t, sup, []model.User{t2}, students)

	// t2 is also registered for the term; the overlap must not duplicate
	var term model.Term
	err := h.st.InTx(ctx, func(tx store.Store) error {
		term = model.Term{CourseID: c.ID, Kind: model.TermLab, Date: monday, DurationMin: 60}
		if err := tx.Terms().Create(ctx, &term); err != nil {
			return err
		}
		for _, id := range []uint64{students[0].ID, students[1].ID, t2.ID} {
			if err := tx.Terms().RegisterStudent(ctx, term.ID, id); err != nil {
				return err
			}
		}
		_, err := h.svc.Schedules.OnTermCreated(ctx, tx, term, c)
		return err
	})
	require.NoError(t, err)

	containing := 0
	for _, u := range []model.User{sup, t2, students[0], students[1]} {
		sched, err := h.st.Schedules().GetByUser(ctx, u.ID)
		require.NoError(t, err)
		n := h.scheduleItemCount(t, sched.ID)
		assert.LessOrEqual(t, n, 1)
		containing += n
	}
	cs, err := h.st.Schedules().GetByCourse(ctx, c.ID)
	require.NoError(t, err)
	containing += h.scheduleItemCount(t, cs.ID)
	// k=2 students + m=2 teachers + course schedule
	assert.Equal(t, 5, containing)
}

func TestCreateTermRollsBackOnFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sup := h.user(t, "sup", model.RoleTeacher)
	c := h.courseWithStudents(t, sup, nil, []model.User{h.user(t, "s1", model.RoleUser)})

	_, err := h.svc.Terms.CreateTerm(ctx, actorOf(sup), c.ID, TermInput{
		Kind: model.TermLecture, Mandatory: true, Date: monday, DurationMin: 60, RoomIDs: []uint64{777},
	})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	terms, err := h.svc.Terms.ListByCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestCreateTermAuthorization(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sup := h.user(t, "sup", model.RoleTeacher)
	stranger := h.user(t, "stranger", model.RoleTeacher)
	c := h.approvedCourse(t, sup, "IOS", 10, false)

	in := TermInput{Kind: model.TermLecture, Date: monday, DurationMin: 60}
	_, err := h.svc.Terms.CreateTerm(ctx, actorOf(stranger), c.ID, in)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	in.Kind = "SEMINAR"
	_, err = h.svc.Terms.CreateTerm(ctx, actorOf(sup), c.ID, in)
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}

func TestWeekView(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sup := h.user(t, "sup", model.RoleTeacher)
	c := h.approvedCourse(t, sup, "INP", 10, false)

	mk := func(start time.Time, minutes uint32) model.Term {
		term, err := h.svc.Terms.CreateTerm(ctx, actorOf(sup), c.ID, TermInput{Kind: model.TermLecture, Date: start, DurationMin: minutes})
		require.NoError(t, err)
		return term
	}
	wed := mk(monday.Add(58*time.Hour), 60)
	mon := mk(monday.Add(8*time.Hour), 60)
	mk(monday.AddDate(0, 0, 7), 60)        // next Monday
	mk(monday.Add(-2*time.Hour), 60)       // ends before the week
	prev := mk(monday.Add(-time.Hour), 60) // ends exactly at the week start

	items, err := h.svc.Schedules.UserWeek(ctx, sup.ID, monday)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, prev.ID, *items[0].TermID)
	assert.Equal(t, mon.ID, *items[1].TermID)
	assert.Equal(t, wed.ID, *items[2].TermID)

	_, err = h.svc.Schedules.UserWeek(ctx, sup.ID, monday.AddDate(0, 0, 1))
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	courseItems, err := h.svc.Schedules.CourseWeek(ctx, c.ID, monday)
	require.NoError(t, err)
	assert.Len(t, courseItems, 3)
}

func TestMyCoursesWeek(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sup := h.user(t, "sup", model.RoleTeacher)
	student := h.user(t, "s1", model.RoleUser)
	c := h.courseWithStudents(t, sup, nil, []model.User{student})
	_, err := h.svc.Terms.CreateTerm(ctx, actorOf(sup), c.ID, TermInput{Kind: model.TermLab, Date: monday.Add(9 * time.Hour), DurationMin: 90})
	require.NoError(t, err)

	for _, u := range []model.User{sup, student} {
		views, err := h.svc.Schedules.MyCoursesWeek(ctx, actorOf(u), monday)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, c.ID, views[0].CourseID)
		assert.Len(t, views[0].Items, 1)
	}
}

func TestParseWeek(t *testing.T) {
	h := newHarness(t)
	h.clock.t = time.Date(2025, 3, 6, 15, 0, 0, 0, time.UTC) // Thursday

	w, err := h.svc.Schedules.ParseWeek("")
	require.NoError(t, err)
	assert.Equal(t, monday, w)

	w, err = h.svc.Schedules.ParseWeek("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, w.Weekday())

	_, err = h.svc.Schedules.ParseWeek("10.3.2025")
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}
