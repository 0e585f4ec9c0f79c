package repository

import (
	"context"
	"time"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/database"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

// TokenRepo persists refresh tokens (single 'token_hash' column).
type TokenRepo struct{ ex database.Executor }

// Create inserts a refresh token hash row.
func (r *TokenRepo) Create(ctx context.Context, t *model.RefreshToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := r.ex.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?)",
		t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return classify(err, "store refresh token")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "store refresh token")
	}
	t.ID = uint64(id)
	return nil
}

// GetByHash returns the row regardless of expiry; callers decide.
func (r *TokenRepo) GetByHash(ctx context.Context, hash string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.ex.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		hash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	return t, classify(err, "refresh token")
}

// DeleteByHash removes a token. Inside a transaction the DELETE waits on a
// concurrent rotation of the same row and then affects nothing.
func (r *TokenRepo) DeleteByHash(ctx context.Context, hash string) error {
	res, err := r.ex.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token_hash=?", hash)
	return mustAffect(res, err, "refresh token")
}

// DeleteExpired removes every token that expired before now.
func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.ex.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at < ?", now)
	if err != nil {
		return 0, classify(err, "sweep refresh tokens")
	}
	n, err := res.RowsAffected()
	return n, classify(err, "sweep refresh tokens")
}

// LinkTokenRepo persists activation and password reset tokens.
type LinkTokenRepo struct{ ex database.Executor }

func (r *LinkTokenRepo) Create(ctx context.Context, t *model.LinkToken) error {
	res, err := r.ex.ExecContext(ctx,
		"INSERT INTO link_tokens (user_id, token_hash, type, expires_at) VALUES (?,?,?,?)",
		t.UserID, t.TokenHash, t.Type, t.ExpiresAt)
	if err != nil {
		return classify(err, "store link token")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "store link token")
	}
	t.ID = uint64(id)
	return nil
}

// GetByHash returns the newest row matching hash and type.
func (r *LinkTokenRepo) GetByHash(ctx context.Context, hash string, typ model.LinkTokenType) (model.LinkToken, error) {
	var t model.LinkToken
	err := r.ex.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, type, expires_at FROM link_tokens WHERE token_hash=? AND type=? ORDER BY id DESC LIMIT 1",
		hash, typ).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.Type, &t.ExpiresAt)
	return t, classify(err, "link token")
}

func (r *LinkTokenRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.ex.ExecContext(ctx, "DELETE FROM link_tokens WHERE id=?", id)
	return mustAffect(res, err, "link token")
}
