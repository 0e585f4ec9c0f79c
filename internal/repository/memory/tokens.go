package memory

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

type linkTokenRepo struct{ db *DB }

func (r *linkTokenRepo) Create(_ context.Context, t *model.LinkToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t.ID = r.db.t.next("link_tokens")
	r.db.t.linkTokens[t.ID] = *t
	return nil
}

// GetByHash returns the newest token matching hash and type.
func (r *linkTokenRepo) GetByHash(_ context.Context, hash string, typ model.LinkTokenType) (model.LinkToken, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var (
		found model.LinkToken
		ok    bool
	)
	for _, t := range r.db.t.linkTokens {
		if t.TokenHash == hash && t.Type == typ && (!ok || t.ID > found.ID) {
			found, ok = t, true
		}
	}
	if !ok {
		return model.LinkToken{}, errors.Wrap(apperr.ErrNotFound, "link token")
	}
	return found, nil
}

func (r *linkTokenRepo) Delete(_ context.Context, id uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.t.linkTokens[id]; !ok {
		return errors.Wrap(apperr.ErrNotFound, "link token")
	}
	delete(r.db.t.linkTokens, id)
	return nil
}

type refreshTokenRepo struct{ db *DB }

func (r *refreshTokenRepo) Create(_ context.Context, t *model.RefreshToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.t.refreshTokens {
		if other.TokenHash == t.TokenHash {
			return errors.Wrap(apperr.ErrConflict, "refresh token")
		}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.ID = r.db.t.next("refresh_tokens")
	r.db.t.refreshTokens[t.ID] = *t
	return nil
}

func (r *refreshTokenRepo) GetByHash(_ context.Context, hash string) (model.RefreshToken, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, t := range r.db.t.refreshTokens {
		if t.TokenHash == hash {
			return t, nil
		}
	}
	return model.RefreshToken{}, errors.Wrap(apperr.ErrNotFound, "refresh token")
}

func (r *refreshTokenRepo) DeleteByHash(_ context.Context, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, t := range r.db.t.refreshTokens {
		if t.TokenHash == hash {
			delete(r.db.t.refreshTokens, id)
			return nil
		}
	}
	return errors.Wrap(apperr.ErrNotFound, "refresh token")
}

func (r *refreshTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, t := range r.db.t.refreshTokens {
		if t.ExpiresAt.Before(now) {
			delete(r.db.t.refreshTokens, id)
			n++
		}
	}
	return n, nil
}
