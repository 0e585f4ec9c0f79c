package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/database"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

// CourseRepo persists courses, their teacher sets and the student_courses
// enrollment records.
type CourseRepo struct{ ex database.Executor }

const courseColumns = "id,name,shortcut,description,price_cents,completion_type,capacity,autoregister,status,supervisor_id,created_at"

func scanCourse(row interface{ Scan(...interface{}) error }) (model.Course, error) {
	var c model.Course
	err := row.Scan(&c.ID, &c.Name, &c.Shortcut, &c.Description, &c.PriceCents, &c.CompletionType,
		&c.Capacity, &c.Autoregister, &c.Status, &c.SupervisorID, &c.CreatedAt)
	return c, err
}

// Create inserts the course and its initial teacher set.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = model.StatusPending
	}
	res, err := r.ex.ExecContext(ctx,
		`INSERT INTO courses (name,shortcut,description,price_cents,completion_type,capacity,autoregister,status,supervisor_id,created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		c.Name, c.Shortcut, c.Description, c.PriceCents, c.CompletionType, c.Capacity, c.Autoregister,
		c.Status, c.SupervisorID, c.CreatedAt)
	if err != nil {
		return classify(err, "create course")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "create course")
	}
	c.ID = uint64(id)
	for _, tid := range c.TeacherIDs {
		if err := r.AddTeacher(ctx, c.ID, tid); err != nil {
			return err
		}
	}
	return nil
}

func (r *CourseRepo) get(ctx context.Context, q string, id uint64) (model.Course, error) {
	c, err := scanCourse(r.ex.QueryRowContext(ctx, q, id))
	if err != nil {
		return c, classify(err, "course")
	}
	c.TeacherIDs, err = queryIDs(ctx, r.ex, "course teachers",
		"SELECT teacher_id FROM course_teachers WHERE course_id=? ORDER BY teacher_id", id)
	return c, err
}

func (r *CourseRepo) GetByID(ctx context.Context, id uint64) (model.Course, error) {
	return r.get(ctx, "SELECT "+courseColumns+" FROM courses WHERE id=?", id)
}

func (r *CourseRepo) GetForUpdate(ctx context.Context, id uint64) (model.Course, error) {
	return r.get(ctx, "SELECT "+courseColumns+" FROM courses WHERE id=? FOR UPDATE", id)
}

// ListByStatus returns bare course rows (without teacher ids) ordered by name.
func (r *CourseRepo) ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.Course, error) {
	rows, err := r.ex.QueryContext(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE status=? ORDER BY name, id", status)
	if err != nil {
		return nil, classify(err, "list courses")
	}
	defer rows.Close()
	out := make([]model.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, classify(err, "list courses")
		}
		c.TeacherIDs = []uint64{}
		out = append(out, c)
	}
	return out, classify(rows.Err(), "list courses")
}

func (r *CourseRepo) SetStatus(ctx context.Context, id uint64, status model.ApprovalStatus) error {
	res, err := r.ex.ExecContext(ctx, "UPDATE courses SET status=? WHERE id=?", status, id)
	return mustAffect(res, err, "course")
}

func (r *CourseRepo) AddTeacher(ctx context.Context, courseID, teacherID uint64) error {
	_, err := r.ex.ExecContext(ctx,
		"INSERT IGNORE INTO course_teachers (course_id, teacher_id) VALUES (?,?)", courseID, teacherID)
	return classify(err, "add course teacher")
}

func (r *CourseRepo) ListTaughtBy(ctx context.Context, userID uint64) ([]uint64, error) {
	return queryIDs(ctx, r.ex, "taught courses",
		`SELECT id FROM courses WHERE supervisor_id=?
		 UNION
		 SELECT course_id FROM course_teachers WHERE teacher_id=?
		 ORDER BY 1`, userID, userID)
}

const enrollmentColumns = "student_id,course_id,status,points,unit_credit,exam_passed,final_grade,completed,failed,created_at"

func scanEnrollment(row interface{ Scan(...interface{}) error }) (model.StudentCourse, error) {
	var (
		sc    model.StudentCourse
		grade sql.NullString
	)
	err := row.Scan(&sc.StudentID, &sc.CourseID, &sc.Status, &sc.Points, &sc.UnitCredit, &sc.ExamPassed,
		&grade, &sc.Completed, &sc.Failed, &sc.CreatedAt)
	if grade.Valid {
		sc.FinalGrade = &grade.String
	}
	return sc, err
}

func (r *CourseRepo) CreateEnrollment(ctx context.Context, sc *model.StudentCourse) error {
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now().UTC()
	}
	_, err := r.ex.ExecContext(ctx,
		"INSERT INTO student_courses (student_id, course_id, status, created_at) VALUES (?,?,?,?)",
		sc.StudentID, sc.CourseID, sc.Status, sc.CreatedAt)
	return classify(err, "enrollment")
}

func (r *CourseRepo) GetEnrollment(ctx context.Context, courseID, studentID uint64) (model.StudentCourse, error) {
	sc, err := scanEnrollment(r.ex.QueryRowContext(ctx,
		"SELECT "+enrollmentColumns+" FROM student_courses WHERE course_id=? AND student_id=?",
		courseID, studentID))
	return sc, classify(err, "enrollment")
}

func (r *CourseRepo) SetEnrollmentStatus(ctx context.Context, courseID, studentID uint64, status model.ApprovalStatus) error {
	res, err := r.ex.ExecContext(ctx,
		"UPDATE student_courses SET status=? WHERE course_id=? AND student_id=?", status, courseID, studentID)
	return mustAffect(res, err, "enrollment")
}

func (r *CourseRepo) ListEnrollments(ctx context.Context, courseID uint64, status *model.ApprovalStatus) ([]model.StudentCourse, error) {
	q := "SELECT " + enrollmentColumns + " FROM student_courses WHERE course_id=?"
	args := []interface{}{courseID}
	if status != nil {
		q += " AND status=?"
		args = append(args, *status)
	}
	rows, err := r.ex.QueryContext(ctx, q+" ORDER BY student_id", args...)
	if err != nil {
		return nil, classify(err, "list enrollments")
	}
	defer rows.Close()
	out := make([]model.StudentCourse, 0)
	for rows.Next() {
		sc, err := scanEnrollment(rows)
		if err != nil {
			return nil, classify(err, "list enrollments")
		}
		out = append(out, sc)
	}
	return out, classify(rows.Err(), "list enrollments")
}

func (r *CourseRepo) CountEnrollments(ctx context.Context, courseID uint64, status model.ApprovalStatus) (int, error) {
	var n int
	err := r.ex.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM student_courses WHERE course_id=? AND status=?", courseID, status).Scan(&n)
	return n, classify(err, "count enrollments")
}

func (r *CourseRepo) ListEnrolledCourseIDs(ctx context.Context, studentID uint64, status model.ApprovalStatus) ([]uint64, error) {
	return queryIDs(ctx, r.ex, "enrolled courses",
		"SELECT course_id FROM student_courses WHERE student_id=? AND status=? ORDER BY course_id",
		studentID, status)
}
