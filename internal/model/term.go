package model

import "time"

// TermKind tags the variant of a term.
type TermKind string

const (
	TermLecture     TermKind = "LECTURE"
	TermLab         TermKind = "LAB"
	TermExam        TermKind = "EXAM"
	TermMidtermExam TermKind = "MIDTERM_EXAM"
)

func (k TermKind) Valid() bool {
	switch k {
	case TermLecture, TermLab, TermExam, TermMidtermExam:
		return true
	}
	return false
}

// IsExam reports whether the kind is graded by an exam sitting.
func (k TermKind) IsExam() bool {
	switch k {
	case TermExam, TermMidtermExam:
		return true
	case TermLecture, TermLab:
		return false
	}
	return false
}

// Term is one scheduled occurrence belonging to a course.
type Term struct {
	ID           uint64    `json:"id"`
	CourseID     uint64    `json:"course_id"`
	Kind         TermKind  `json:"kind"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	MinPoints    uint32    `json:"min_points"`
	MaxPoints    uint32    `json:"max_points"`
	Mandatory    bool      `json:"mandatory"`
	Date         time.Time `json:"date"`
	DurationMin  uint32    `json:"duration_min"`
	SupervisorID *uint64   `json:"supervisor_id,omitempty"`
	RoomIDs      []uint64  `json:"room_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

// End returns the instant the term finishes.
func (t Term) End() time.Time {
	return t.Date.Add(time.Duration(t.DurationMin) * time.Minute)
}

// StudentTerm is the registration of one student for one term.
type StudentTerm struct {
	StudentID uint64  `json:"student_id"`
	TermID    uint64  `json:"term_id"`
	Points    *uint32 `json:"points,omitempty"`
}
