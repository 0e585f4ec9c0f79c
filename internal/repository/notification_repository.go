package repository

import (
	"context"
	"database/sql"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/database"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

type NotificationRepo struct{ ex database.Executor }

const notificationColumns = "id,sender_id,recipient_id,course_id,message,is_read,created_at"

func scanNotification(row interface{ Scan(...interface{}) error }) (model.Notification, error) {
	var (
		n        model.Notification
		courseID sql.NullInt64
	)
	err := row.Scan(&n.ID, &n.SenderID, &n.RecipientID, &courseID, &n.Message, &n.IsRead, &n.CreatedAt)
	if courseID.Valid {
		id := uint64(courseID.Int64)
		n.CourseID = &id
	}
	return n, err
}

// CreateBatch inserts all notifications with a single multi-row statement.
// InnoDB hands out consecutive ids for one simple INSERT, so ids are
// assigned from LAST_INSERT_ID() upwards.
func (r *NotificationRepo) CreateBatch(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	q := "INSERT INTO notifications (sender_id, recipient_id, course_id, message, is_read, created_at) VALUES "
	args := make([]interface{}, 0, len(ns)*6)
	for i, n := range ns {
		if i > 0 {
			q += ","
		}
		q += "(" + placeholders(6) + ")"
		args = append(args, n.SenderID, n.RecipientID, n.CourseID, n.Message, n.IsRead, n.CreatedAt)
	}
	res, err := r.ex.ExecContext(ctx, q, args...)
	if err != nil {
		return classify(err, "create notifications")
	}
	first, err := res.LastInsertId()
	if err != nil {
		return classify(err, "create notifications")
	}
	for i := range ns {
		ns[i].ID = uint64(first) + uint64(i)
	}
	return nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id uint64) (model.Notification, error) {
	n, err := scanNotification(r.ex.QueryRowContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE id=?", id))
	return n, classify(err, "notification")
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id uint64) error {
	_, err := r.ex.ExecContext(ctx, "UPDATE notifications SET is_read=TRUE WHERE id=?", id)
	return classify(err, "mark notification read")
}

func (r *NotificationRepo) ListForRecipient(ctx context.Context, recipientID uint64) ([]model.Notification, error) {
	rows, err := r.ex.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE recipient_id=? ORDER BY created_at DESC, id DESC",
		recipientID)
	if err != nil {
		return nil, classify(err, "list notifications")
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, classify(err, "list notifications")
		}
		out = append(out, n)
	}
	return out, classify(rows.Err(), "list notifications")
}

func (r *NotificationRepo) CountUnread(ctx context.Context, recipientID uint64) (int, error) {
	var n int
	err := r.ex.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id=? AND is_read=FALSE", recipientID).Scan(&n)
	return n, classify(err, "count notifications")
}
