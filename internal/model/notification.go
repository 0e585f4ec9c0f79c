package model

import "time"

// Notification is a message from one user to another, optionally sent on
// behalf of a course.
type Notification struct {
	ID          uint64    `json:"id"`
	SenderID    uint64    `json:"sender_id"`
	RecipientID uint64    `json:"recipient_id"`
	CourseID    *uint64   `json:"course_id,omitempty"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
