package model

import "time"

// Schedule is owned by exactly one user or exactly one course.
type Schedule struct {
	ID       uint64  `json:"id"`
	UserID   *uint64 `json:"user_id,omitempty"`
	CourseID *uint64 `json:"course_id,omitempty"`
}

// ScheduleItem is a denormalized calendar entry derived from a term. The
// course name and shortcut are snapshots taken at creation time. Items are
// shared by reference: many schedules may list the same item.
type ScheduleItem struct {
	ID             uint64    `json:"id"`
	TermID         *uint64   `json:"term_id,omitempty"`
	Kind           TermKind  `json:"kind"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	CourseName     string    `json:"course_name"`
	CourseShortcut string    `json:"course_shortcut"`
}

// Overlaps reports whether the item falls inside [from, to) using the
// inclusive end bound used by week views.
func (i ScheduleItem) Overlaps(from, to time.Time) bool {
	return !i.End.Before(from) && i.Start.Before(to)
}
