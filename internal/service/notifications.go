package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/queue"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

// FanoutScope selects which enrollments a course notification reaches.
type FanoutScope string

const (
	ScopeApproved FanoutScope = "approved"
	ScopeAll      FanoutScope = "all"
)

// ParseScope defaults to ScopeApproved.
func ParseScope(raw string) (FanoutScope, error) {
	switch FanoutScope(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ScopeApproved:
		return ScopeApproved, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", errors.Wrapf(apperr.ErrInvalidArgument, "unknown scope %q", raw)
}

type NotificationService struct {
	st        store.Store
	publisher queue.Publisher
	now       func() time.Time
}

func cleanMessage(msg string) (string, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", errors.Wrap(apperr.ErrInvalidArgument, "message is empty")
	}
	return msg, nil
}

// SendToUser sends a point-to-point notification.
func (s *NotificationService) SendToUser(ctx context.Context, senderID, recipientID uint64, message string) (model.Notification, error) {
	message, err := cleanMessage(message)
	if err != nil {
		return model.Notification{}, err
	}
	if _, err := s.st.Users().GetByID(ctx, senderID); err != nil {
		return model.Notification{}, err
	}
	if _, err := s.st.Users().GetByID(ctx, recipientID); err != nil {
		return model.Notification{}, err
	}
	batch := []model.Notification{{
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     message,
		CreatedAt:   s.now(),
	}}
	if err := s.st.Notifications().CreateBatch(ctx, batch); err != nil {
		return model.Notification{}, err
	}
	s.publish(ctx, batch, "")
	return batch[0], nil
}

// SendToCourse notifies the course's students. Admins may always send;
// teachers only to courses they supervise or teach. All rows are written in
// one transaction.
func (s *NotificationService) SendToCourse(ctx context.Context, senderID, courseID uint64, message string, scope FanoutScope) ([]model.Notification, error) {
	message, err := cleanMessage(message)
	if err != nil {
		return nil, err
	}
	var batch []model.Notification
	err = s.st.InTx(ctx, func(tx store.Store) error {
		sender, err := tx.Users().GetByID(ctx, senderID)
		if err != nil {
			return err
		}
		c, err := tx.Courses().GetByID(ctx, courseID)
		if err != nil {
			return err
		}
		if !sender.IsAdmin() && !(sender.IsTeacher() && c.Teaches(sender.ID)) {
			return errors.Wrap(apperr.ErrUnauthorized, "not allowed to notify this course")
		}

		var filter *model.ApprovalStatus
		if scope != ScopeAll {
			approved := model.StatusApproved
			filter = &approved
		}
		enrolled, err := tx.Courses().ListEnrollments(ctx, courseID, filter)
		if err != nil {
			return err
		}
		now := s.now()
		batch = make([]model.Notification, 0, len(enrolled))
		for _, sc := range enrolled {
			cid := courseID
			batch = append(batch, model.Notification{
				SenderID:    senderID,
				RecipientID: sc.StudentID,
				CourseID:    &cid,
				Message:     message,
				CreatedAt:   now,
			})
		}
		return tx.Notifications().CreateBatch(ctx, batch)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, batch, scope)
	return batch, nil
}

// publish emits one event for a committed batch. Failures are dropped; the
// publisher logs them.
func (s *NotificationService) publish(ctx context.Context, batch []model.Notification, scope FanoutScope) {
	if len(batch) == 0 {
		return
	}
	ev := queue.NotificationCreatedEvent{
		SenderID:        batch[0].SenderID,
		CourseID:        batch[0].CourseID,
		Scope:           string(scope),
		RecipientIDs:    make([]uint64, len(batch)),
		NotificationIDs: make([]uint64, len(batch)),
		Message:         batch[0].Message,
		CreatedAt:       batch[0].CreatedAt,
	}
	for i, n := range batch {
		ev.RecipientIDs[i] = n.RecipientID
		ev.NotificationIDs[i] = n.ID
	}
	_ = s.publisher.PublishNotificationCreated(ctx, ev)
}

// MarkRead marks a notification read. Only its recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint64) (model.Notification, error) {
	n, err := s.st.Notifications().GetByID(ctx, id)
	if err != nil {
		return model.Notification{}, err
	}
	if n.RecipientID != userID {
		return model.Notification{}, errors.Wrap(apperr.ErrUnauthorized, "not the recipient")
	}
	if err := s.st.Notifications().MarkRead(ctx, id); err != nil {
		return model.Notification{}, err
	}
	n.IsRead = true
	return n, nil
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint64) ([]model.Notification, error) {
	return s.st.Notifications().ListForRecipient(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint64) (int, error) {
	return s.st.Notifications().CountUnread(ctx, userID)
}
