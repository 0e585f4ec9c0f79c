// Package queue carries domain events over RabbitMQ. Publishing is best
// effort: the request that produced an event has already committed, so a
// broker failure is logged and dropped.
package queue

import "time"

// NotificationCreatedQueue is the durable queue fed by notification fan-out.
const NotificationCreatedQueue = "notification.created"

// NotificationCreatedEvent is published once per committed notification
// batch, either a point-to-point message or a course-wide fan-out.
type NotificationCreatedEvent struct {
	SenderID        uint64    `json:"sender_id"`
	CourseID        *uint64   `json:"course_id,omitempty"`
	Scope           string    `json:"scope,omitempty"`
	RecipientIDs    []uint64  `json:"recipient_ids"`
	NotificationIDs []uint64  `json:"notification_ids"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"created_at"`
}
