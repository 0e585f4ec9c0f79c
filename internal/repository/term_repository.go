package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/database"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

// TermRepo persists terms, their room links and student registrations.
type TermRepo struct{ ex database.Executor }

const termColumns = "id,course_id,kind,name,description,min_points,max_points,mandatory,date,duration_min,supervisor_id,created_at"

func scanTerm(row interface{ Scan(...interface{}) error }) (model.Term, error) {
	var (
		t   model.Term
		sup sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.CourseID, &t.Kind, &t.Name, &t.Description, &t.MinPoints, &t.MaxPoints,
		&t.Mandatory, &t.Date, &t.DurationMin, &sup, &t.CreatedAt)
	if sup.Valid {
		id := uint64(sup.Int64)
		t.SupervisorID = &id
	}
	return t, err
}

// Create inserts the term together with its room links.
func (r *TermRepo) Create(ctx context.Context, t *model.Term) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := r.ex.ExecContext(ctx,
		`INSERT INTO terms (course_id,kind,name,description,min_points,max_points,mandatory,date,duration_min,supervisor_id,created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		t.CourseID, t.Kind, t.Name, t.Description, t.MinPoints, t.MaxPoints, t.Mandatory,
		t.Date.UTC(), t.DurationMin, t.SupervisorID, t.CreatedAt)
	if err != nil {
		return classify(err, "create term")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "create term")
	}
	t.ID = uint64(id)
	if len(t.RoomIDs) == 0 {
		return nil
	}
	q := "INSERT INTO term_rooms (term_id, room_id) VALUES "
	args := make([]interface{}, 0, len(t.RoomIDs)*2)
	for i, rid := range t.RoomIDs {
		if i > 0 {
			q += ","
		}
		q += "(?,?)"
		args = append(args, t.ID, rid)
	}
	_, err = r.ex.ExecContext(ctx, q, args...)
	return classify(err, "link term rooms")
}

func (r *TermRepo) GetByID(ctx context.Context, id uint64) (model.Term, error) {
	t, err := scanTerm(r.ex.QueryRowContext(ctx, "SELECT "+termColumns+" FROM terms WHERE id=?", id))
	if err != nil {
		return t, classify(err, "term")
	}
	t.RoomIDs, err = queryIDs(ctx, r.ex, "term rooms",
		"SELECT room_id FROM term_rooms WHERE term_id=? ORDER BY room_id", id)
	return t, err
}

func (r *TermRepo) ListByCourse(ctx context.Context, courseID uint64) ([]model.Term, error) {
	rows, err := r.ex.QueryContext(ctx,
		"SELECT "+termColumns+" FROM terms WHERE course_id=? ORDER BY date, id", courseID)
	if err != nil {
		return nil, classify(err, "list terms")
	}
	defer rows.Close()
	out := make([]model.Term, 0)
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, classify(err, "list terms")
		}
		t.RoomIDs = []uint64{}
		out = append(out, t)
	}
	return out, classify(rows.Err(), "list terms")
}

func (r *TermRepo) RegisterStudent(ctx context.Context, termID, studentID uint64) error {
	_, err := r.ex.ExecContext(ctx,
		"INSERT IGNORE INTO student_terms (term_id, student_id) VALUES (?,?)", termID, studentID)
	return classify(err, "register for term")
}

func (r *TermRepo) ListStudentIDs(ctx context.Context, termID uint64) ([]uint64, error) {
	return queryIDs(ctx, r.ex, "term students",
		"SELECT student_id FROM student_terms WHERE term_id=? ORDER BY student_id", termID)
}
