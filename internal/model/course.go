package model

import "time"

// CompletionType describes how a course is finished.
type CompletionType string

const (
	CompletionExam             CompletionType = "EXAM"
	CompletionUnitCredit       CompletionType = "UNIT_CREDIT"
	CompletionGradedUnitCredit CompletionType = "GRADED_UNIT_CREDIT"
	CompletionUnitCreditExam   CompletionType = "UNIT_CREDIT_EXAM"
)

func (c CompletionType) Valid() bool {
	switch c {
	case CompletionExam, CompletionUnitCredit, CompletionGradedUnitCredit, CompletionUnitCreditExam:
		return true
	}
	return false
}

// Course mirrors the `courses` table. TeacherIDs is loaded from
// `course_teachers` and is empty when the repository was asked for the bare
// row only.
type Course struct {
	ID             uint64         `json:"id"`
	Name           string         `json:"name"`
	Shortcut       string         `json:"shortcut"`
	Description    string         `json:"description"`
	PriceCents     uint32         `json:"price_cents"`
	CompletionType CompletionType `json:"completion_type"`
	Capacity       uint32         `json:"capacity"`
	Autoregister   bool           `json:"autoregister"`
	Status         ApprovalStatus `json:"status"`
	SupervisorID   uint64         `json:"supervisor_id"`
	TeacherIDs     []uint64       `json:"teacher_ids"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Teaches reports whether userID supervises or teaches the course.
func (c Course) Teaches(userID uint64) bool {
	if c.SupervisorID == userID {
		return true
	}
	for _, id := range c.TeacherIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// StudentCourse is the enrollment record of one student in one course. It
// carries the completion state, not just the link.
type StudentCourse struct {
	StudentID  uint64         `json:"student_id"`
	CourseID   uint64         `json:"course_id"`
	Status     ApprovalStatus `json:"status"`
	Points     uint32         `json:"points"`
	UnitCredit bool           `json:"unit_credit"`
	ExamPassed bool           `json:"exam_passed"`
	FinalGrade *string        `json:"final_grade,omitempty"`
	Completed  bool           `json:"completed"`
	Failed     bool           `json:"failed"`
	CreatedAt  time.Time      `json:"created_at"`
}
