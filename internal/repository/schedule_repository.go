package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/database"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

// ScheduleRepo persists schedules, schedule items and the schedule_entries
// join that makes items shareable between schedules.
type ScheduleRepo struct{ ex database.Executor }

func scanSchedule(row interface{ Scan(...interface{}) error }) (model.Schedule, error) {
	var (
		s                model.Schedule
		userID, courseID sql.NullInt64
	)
	err := row.Scan(&s.ID, &userID, &courseID)
	if userID.Valid {
		id := uint64(userID.Int64)
		s.UserID = &id
	}
	if courseID.Valid {
		id := uint64(courseID.Int64)
		s.CourseID = &id
	}
	return s, err
}

func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	res, err := r.ex.ExecContext(ctx, "INSERT INTO schedules (user_id, course_id) VALUES (?,?)", s.UserID, s.CourseID)
	if err != nil {
		return classify(err, "create schedule")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "create schedule")
	}
	s.ID = uint64(id)
	return nil
}

func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (model.Schedule, error) {
	s, err := scanSchedule(r.ex.QueryRowContext(ctx, "SELECT id, user_id, course_id FROM schedules WHERE id=?", id))
	return s, classify(err, "schedule")
}

func (r *ScheduleRepo) GetByUser(ctx context.Context, userID uint64) (model.Schedule, error) {
	s, err := scanSchedule(r.ex.QueryRowContext(ctx, "SELECT id, user_id, course_id FROM schedules WHERE user_id=?", userID))
	return s, classify(err, "schedule")
}

func (r *ScheduleRepo) GetByCourse(ctx context.Context, courseID uint64) (model.Schedule, error) {
	s, err := scanSchedule(r.ex.QueryRowContext(ctx, "SELECT id, user_id, course_id FROM schedules WHERE course_id=?", courseID))
	return s, classify(err, "schedule")
}

func (r *ScheduleRepo) CreateItem(ctx context.Context, it *model.ScheduleItem) error {
	res, err := r.ex.ExecContext(ctx,
		"INSERT INTO schedule_items (term_id, kind, start_time, end_time, course_name, course_shortcut) VALUES (?,?,?,?,?,?)",
		it.TermID, it.Kind, it.Start.UTC(), it.End.UTC(), it.CourseName, it.CourseShortcut)
	if err != nil {
		return classify(err, "create schedule item")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "create schedule item")
	}
	it.ID = uint64(id)
	return nil
}

const itemColumns = "i.id, i.term_id, i.kind, i.start_time, i.end_time, i.course_name, i.course_shortcut"

func scanItem(row interface{ Scan(...interface{}) error }) (model.ScheduleItem, error) {
	var (
		it     model.ScheduleItem
		termID sql.NullInt64
	)
	err := row.Scan(&it.ID, &termID, &it.Kind, &it.Start, &it.End, &it.CourseName, &it.CourseShortcut)
	if termID.Valid {
		id := uint64(termID.Int64)
		it.TermID = &id
	}
	return it, err
}

func (r *ScheduleRepo) GetItemByTerm(ctx context.Context, termID uint64) (model.ScheduleItem, error) {
	it, err := scanItem(r.ex.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM schedule_items i WHERE i.term_id=?", termID))
	return it, classify(err, "schedule item")
}

func (r *ScheduleRepo) AddItem(ctx context.Context, scheduleID, itemID uint64) error {
	_, err := r.ex.ExecContext(ctx,
		"INSERT IGNORE INTO schedule_entries (schedule_id, item_id) VALUES (?,?)", scheduleID, itemID)
	return classify(err, "add schedule item")
}

func (r *ScheduleRepo) ItemsBetween(ctx context.Context, scheduleID uint64, from, to time.Time) ([]model.ScheduleItem, error) {
	rows, err := r.ex.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM schedule_items i
		 JOIN schedule_entries e ON e.item_id = i.id
		 WHERE e.schedule_id = ? AND i.end_time >= ? AND i.start_time < ?
		 ORDER BY i.start_time, i.id`,
		scheduleID, from.UTC(), to.UTC())
	if err != nil {
		return nil, classify(err, "schedule items")
	}
	defer rows.Close()
	out := make([]model.ScheduleItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, classify(err, "schedule items")
		}
		out = append(out, it)
	}
	return out, classify(rows.Err(), "schedule items")
}
