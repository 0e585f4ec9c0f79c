package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/database"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

type UserRepo struct{ ex database.Executor }

const userColumns = "id,username,email,password_hash,role,activated,telephone,birthday,created_at"

func scanUser(row interface{ Scan(...interface{}) error }) (model.User, error) {
	var (
		u         model.User
		telephone sql.NullString
		birthday  sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Activated,
		&telephone, &birthday, &u.CreatedAt)
	if telephone.Valid {
		u.Telephone = &telephone.String
	}
	if birthday.Valid {
		u.Birthday = &birthday.Time
	}
	return u, err
}

// Create inserts the user and fills in its ID. Duplicate username, email or
// telephone surface as apperr.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.ex.ExecContext(ctx,
		"INSERT INTO users (username,email,password_hash,role,activated,telephone,birthday,created_at) VALUES (?,?,?,?,?,?,?,?)",
		u.Username, u.Email, u.PasswordHash, u.Role, u.Activated, u.Telephone, u.Birthday, u.CreatedAt)
	if err != nil {
		return classify(err, "create user")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "create user")
	}
	u.ID = uint64(id)
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.ex.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	return u, classify(err, "user")
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.ex.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	return u, classify(err, "user")
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := scanUser(r.ex.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username)))
	return u, classify(err, "user")
}

func (r *UserRepo) SetActivated(ctx context.Context, id uint64, activated bool) error {
	_, err := r.ex.ExecContext(ctx, "UPDATE users SET activated=? WHERE id=?", activated, id)
	return classify(err, "activate user")
}

func (r *UserRepo) SetPasswordHash(ctx context.Context, id uint64, hash string) error {
	_, err := r.ex.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return classify(err, "update password")
}

func (r *UserRepo) SetRole(ctx context.Context, id uint64, role model.Role) error {
	res, err := r.ex.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
	return mustAffect(res, err, "user")
}
