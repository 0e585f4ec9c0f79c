package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/utils"
)

// AuthService covers registration and the JWT + refresh token session.
type AuthService struct {
	st     store.Store
	tokens *TokenService
	hasher PasswordHasher
	cfg    config.Config
	now    func() time.Time
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Telephone *string
	Birthday  *time.Time
}

// Session is the credential pair handed to a client after login or refresh.
type Session struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// Register creates an unactivated USER, its personal schedule and an
// activation token, then mails the activation link. A mail failure rolls
// the whole registration back.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return model.User{}, errors.Wrap(apperr.ErrInvalidArgument, "username, email and password are required")
	}
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, apperr.Internal(err, "hash password")
	}

	u := model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: digest,
		Role:         model.RoleUser,
		Telephone:    in.Telephone,
		Birthday:     in.Birthday,
		CreatedAt:    s.now(),
	}
	err = s.st.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Users().GetByEmail(ctx, u.Email); err == nil {
			return errors.Wrap(apperr.ErrConflict, "email already registered")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if _, err := tx.Users().GetByUsername(ctx, u.Username); err == nil {
			return errors.Wrap(apperr.ErrConflict, "username already taken")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if err := tx.Users().Create(ctx, &u); err != nil {
			return err
		}
		if err := tx.Schedules().Create(ctx, &model.Schedule{UserID: &u.ID}); err != nil {
			return err
		}
		return s.tokens.issueActivation(ctx, tx, u)
	})
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Login accepts a username or an email. Unknown users and wrong passwords
// are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, login, password string) (Session, error) {
	login = strings.TrimSpace(login)
	var (
		u   model.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.st.Users().GetByEmail(ctx, strings.ToLower(login))
	} else {
		u, err = s.st.Users().GetByUsername(ctx, login)
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return Session{}, errors.Wrap(apperr.ErrUnauthenticated, "invalid credentials")
	}
	if err != nil {
		return Session{}, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return Session{}, errors.Wrap(apperr.ErrUnauthenticated, "invalid credentials")
	}
	if !u.Activated {
		return Session{}, errors.Wrap(apperr.ErrUnauthorized, "account not activated")
	}
	return s.issue(ctx, s.st, u)
}

func (s *AuthService) issue(ctx context.Context, st store.Store, u model.User) (Session, error) {
	now := s.now()
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, u, now, s.cfg.AccessTTL)
	if err != nil {
		return Session{}, apperr.Internal(err, "issue access token")
	}
	refresh, err := utils.NewRefreshToken(now, s.cfg.RefreshTTL)
	if err != nil {
		return Session{}, apperr.Internal(err, "issue refresh token")
	}
	row := model.RefreshToken{
		UserID:    u.ID,
		TokenHash: utils.HashToken(refresh.Raw),
		ExpiresAt: refresh.Exp,
		CreatedAt: now,
	}
	if err := st.RefreshTokens().Create(ctx, &row); err != nil {
		return Session{}, err
	}
	return Session{User: u, Access: access, Refresh: refresh}, nil
}

// Refresh rotates a refresh token: the presented one is deleted and a new
// pair is issued. Expired tokens are deleted and rejected.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Session, error) {
	hash := utils.HashToken(strings.TrimSpace(raw))
	var (
		sess    Session
		expired bool
	)
	err := s.st.InTx(ctx, func(tx store.Store) error {
		tok, err := tx.RefreshTokens().GetByHash(ctx, hash)
		if err != nil {
			return err
		}
		if err := tx.RefreshTokens().DeleteByHash(ctx, hash); err != nil {
			return err
		}
		if tok.Expired(s.now()) {
			expired = true
			return nil
		}
		u, err := tx.Users().GetByID(ctx, tok.UserID)
		if err != nil {
			return err
		}
		sess, err = s.issue(ctx, tx, u)
		return err
	})
	if err != nil {
		return Session{}, err
	}
	if expired {
		return Session{}, errors.Wrap(apperr.ErrExpired, "refresh token")
	}
	return sess, nil
}

// Logout deletes the refresh token. An empty or unknown token is a no-op.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	err := s.st.RefreshTokens().DeleteByHash(ctx, utils.HashToken(raw))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	return err
}

// SweepExpired deletes every refresh token past its expiry.
func (s *AuthService) SweepExpired(ctx context.Context) (int64, error) {
	return s.st.RefreshTokens().DeleteExpired(ctx, s.now())
}
