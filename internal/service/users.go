package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

type UserService struct {
	st store.Store
}

func (s *UserService) Get(ctx context.Context, id uint64) (model.User, error) {
	return s.st.Users().GetByID(ctx, id)
}

// SetRole changes a user's role. The new role shows up in the user's next
// access token.
func (s *UserService) SetRole(ctx context.Context, id uint64, role model.Role) (model.User, error) {
	if !role.Valid() {
		return model.User{}, errors.Wrapf(apperr.ErrInvalidArgument, "unknown role %q", role)
	}
	if err := s.st.Users().SetRole(ctx, id, role); err != nil {
		return model.User{}, err
	}
	return s.st.Users().GetByID(ctx, id)
}

// CreateAdmin creates an activated ADMIN with its schedule. Used by the
// admin CLI to bootstrap a deployment.
func (s *UserService) CreateAdmin(ctx context.Context, username, email, passwordHash string) (model.User, error) {
	u := model.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Activated:    true,
		CreatedAt:    time.Now().UTC(),
	}
	err := s.st.InTx(ctx, func(tx store.Store) error {
		if err := tx.Users().Create(ctx, &u); err != nil {
			return err
		}
		return tx.Schedules().Create(ctx, &model.Schedule{UserID: &u.ID})
	})
	return u, err
}
