package memory

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

type notificationRepo struct{ db *DB }

func (r *notificationRepo) CreateBatch(_ context.Context, ns []model.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range ns {
		ns[i].ID = r.db.t.next("notifications")
		r.db.t.notifications[ns[i].ID] = ns[i]
	}
	return nil
}

func (r *notificationRepo) GetByID(_ context.Context, id uint64) (model.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n, ok := r.db.t.notifications[id]
	if !ok {
		return model.Notification{}, errors.Wrap(apperr.ErrNotFound, "notification")
	}
	return n, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.t.notifications[id]
	if !ok {
		return errors.Wrap(apperr.ErrNotFound, "notification")
	}
	n.IsRead = true
	r.db.t.notifications[id] = n
	return nil
}

func (r *notificationRepo) ListForRecipient(_ context.Context, recipientID uint64) ([]model.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.Notification, 0)
	for _, n := range r.db.t.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *notificationRepo) CountUnread(_ context.Context, recipientID uint64) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n := 0
	for _, x := range r.db.t.notifications {
		if x.RecipientID == recipientID && !x.IsRead {
			n++
		}
	}
	return n, nil
}
