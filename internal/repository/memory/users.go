package memory

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

type userRepo struct{ db *DB }

func (r *userRepo) Create(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range r.db.t.users {
		switch {
		case other.Username == u.Username:
			return errors.Wrap(apperr.ErrConflict, "username already taken")
		case other.Email == u.Email:
			return errors.Wrap(apperr.ErrConflict, "email already registered")
		case u.Telephone != nil && other.Telephone != nil && *other.Telephone == *u.Telephone:
			return errors.Wrap(apperr.ErrConflict, "telephone already registered")
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.ID = r.db.t.next("users")
	r.db.t.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if u, ok := r.db.t.users[id]; ok {
		return u, nil
	}
	return model.User{}, errors.Wrap(apperr.ErrNotFound, "user")
}

func (r *userRepo) find(match func(model.User) bool) (model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.t.users {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, errors.Wrap(apperr.ErrNotFound, "user")
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r *userRepo) update(id uint64, fn func(*model.User)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.t.users[id]
	if !ok {
		return errors.Wrap(apperr.ErrNotFound, "user")
	}
	fn(&u)
	r.db.t.users[id] = u
	return nil
}

func (r *userRepo) SetActivated(_ context.Context, id uint64, activated bool) error {
	return r.update(id, func(u *model.User) { u.Activated = activated })
}

func (r *userRepo) SetPasswordHash(_ context.Context, id uint64, hash string) error {
	return r.update(id, func(u *model.User) { u.PasswordHash = hash })
}

func (r *userRepo) SetRole(_ context.Context, id uint64, role model.Role) error {
	return r.update(id, func(u *model.User) { u.Role = role })
}
