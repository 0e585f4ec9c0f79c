// Package store declares the persistence contract used by the services.
// internal/repository implements it on MySQL; internal/repository/memory
// implements it in process for development and tests.
//
// Finders report a missing row with apperr.ErrNotFound and uniqueness
// violations with apperr.ErrConflict.
package store

import (
	"context"
	"time"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

// Store groups the repositories. InTx runs fn against a Store whose
// repositories share one transaction: fn's error rolls everything back.
type Store interface {
	Users() UserRepository
	LinkTokens() LinkTokenRepository
	RefreshTokens() RefreshTokenRepository
	Courses() CourseRepository
	Terms() TermRepository
	Rooms() RoomRepository
	Schedules() ScheduleRepository
	Notifications() NotificationRepository
	InTx(ctx context.Context, fn func(tx Store) error) error
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	SetActivated(ctx context.Context, id uint64, activated bool) error
	SetPasswordHash(ctx context.Context, id uint64, hash string) error
	SetRole(ctx context.Context, id uint64, role model.Role) error
}

type LinkTokenRepository interface {
	Create(ctx context.Context, t *model.LinkToken) error
	GetByHash(ctx context.Context, hash string, typ model.LinkTokenType) (model.LinkToken, error)
	// Delete reports ErrNotFound when the row is already gone, so of two
	// concurrent consumers only one succeeds.
	Delete(ctx context.Context, id uint64) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (model.RefreshToken, error)
	// DeleteByHash reports ErrNotFound when no row was deleted.
	DeleteByHash(ctx context.Context, hash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, c *model.Course) error
	GetByID(ctx context.Context, id uint64) (model.Course, error)
	// GetForUpdate loads the course and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id uint64) (model.Course, error)
	ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.Course, error)
	SetStatus(ctx context.Context, id uint64, status model.ApprovalStatus) error
	AddTeacher(ctx context.Context, courseID, teacherID uint64) error
	// ListTaughtBy returns ids of courses the user supervises or teaches.
	ListTaughtBy(ctx context.Context, userID uint64) ([]uint64, error)

	CreateEnrollment(ctx context.Context, sc *model.StudentCourse) error
	GetEnrollment(ctx context.Context, courseID, studentID uint64) (model.StudentCourse, error)
	SetEnrollmentStatus(ctx context.Context, courseID, studentID uint64, status model.ApprovalStatus) error
	// ListEnrollments returns the course's enrollments; a nil status means all of them.
	ListEnrollments(ctx context.Context, courseID uint64, status *model.ApprovalStatus) ([]model.StudentCourse, error)
	CountEnrollments(ctx context.Context, courseID uint64, status model.ApprovalStatus) (int, error)
	// ListEnrolledCourseIDs returns ids of courses the student is enrolled in with the given status.
	ListEnrolledCourseIDs(ctx context.Context, studentID uint64, status model.ApprovalStatus) ([]uint64, error)
}

type TermRepository interface {
	Create(ctx context.Context, t *model.Term) error
	GetByID(ctx context.Context, id uint64) (model.Term, error)
	ListByCourse(ctx context.Context, courseID uint64) ([]model.Term, error)
	// RegisterStudent is idempotent.
	RegisterStudent(ctx context.Context, termID, studentID uint64) error
	ListStudentIDs(ctx context.Context, termID uint64) ([]uint64, error)
}

type RoomRepository interface {
	Create(ctx context.Context, r *model.Room) error
	GetByID(ctx context.Context, id uint64) (model.Room, error)
	GetByShortcut(ctx context.Context, shortcut string) (model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	AddOccupant(ctx context.Context, roomID, userID uint64) error

	CreateRequest(ctx context.Context, r *model.RoomRequest) error
	// GetRequestForUpdate loads the request and locks its row until the transaction ends.
	GetRequestForUpdate(ctx context.Context, id uint64) (model.RoomRequest, error)
	ListRequestsByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.RoomRequest, error)
	ResolveRequest(ctx context.Context, id uint64, status model.ApprovalStatus, roomID *uint64) error
}

type ScheduleRepository interface {
	Create(ctx context.Context, s *model.Schedule) error
	GetByID(ctx context.Context, id uint64) (model.Schedule, error)
	GetByUser(ctx context.Context, userID uint64) (model.Schedule, error)
	GetByCourse(ctx context.Context, courseID uint64) (model.Schedule, error)
	CreateItem(ctx context.Context, it *model.ScheduleItem) error
	GetItemByTerm(ctx context.Context, termID uint64) (model.ScheduleItem, error)
	// AddItem links an item into a schedule; linking twice is a no-op.
	AddItem(ctx context.Context, scheduleID, itemID uint64) error
	// ItemsBetween returns items with End >= from and Start < to, ordered by Start.
	ItemsBetween(ctx context.Context, scheduleID uint64, from, to time.Time) ([]model.ScheduleItem, error)
}

type NotificationRepository interface {
	CreateBatch(ctx context.Context, ns []model.Notification) error
	GetByID(ctx context.Context, id uint64) (model.Notification, error)
	MarkRead(ctx context.Context, id uint64) error
	// ListForRecipient returns the recipient's notifications, newest first.
	ListForRecipient(ctx context.Context, recipientID uint64) ([]model.Notification, error)
	CountUnread(ctx context.Context, recipientID uint64) (int, error)
}
