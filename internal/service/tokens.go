package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/utils"
)

// linkTokenBytes is 256 bits of randomness per link token.
const linkTokenBytes = 32

// TokenService issues and consumes the single-use link tokens used for
// account activation and password reset. Only SHA-256 digests are stored.
type TokenService struct {
	st     store.Store
	mailer Mailer
	hasher PasswordHasher
	cfg    config.Config
	now    func() time.Time
}

func (s *TokenService) ttl(typ model.LinkTokenType) time.Duration {
	switch typ {
	case model.LinkTokenActivation:
		return s.cfg.ActivationTTL
	case model.LinkTokenPasswordReset:
		return s.cfg.PasswordResetTTL
	}
	return 0
}

// Issue stores a fresh token of typ for u and returns its plaintext.
func (s *TokenService) Issue(ctx context.Context, st store.Store, u model.User, typ model.LinkTokenType) (string, error) {
	raw, err := utils.RandomURLToken(linkTokenBytes)
	if err != nil {
		return "", apperr.Internal(err, "generate link token")
	}
	t := model.LinkToken{
		UserID:    u.ID,
		TokenHash: utils.HashToken(raw),
		Type:      typ,
		ExpiresAt: s.now().Add(s.ttl(typ)),
	}
	if err := st.LinkTokens().Create(ctx, &t); err != nil {
		return "", err
	}
	return raw, nil
}

// issueActivation issues an activation token and mails the link. Run inside
// a transaction so a failed send leaves no token behind.
func (s *TokenService) issueActivation(ctx context.Context, tx store.Store, u model.User) error {
	raw, err := s.Issue(ctx, tx, u, model.LinkTokenActivation)
	if err != nil {
		return err
	}
	return s.mailer.SendActivationEmail(ctx, u.Email, u.Username, s.mailer.ActivationLink(raw))
}

// consume looks the token up and deletes it. An expired token is deleted
// too and reported through expired with a nil error, so the caller can
// commit the deletion before returning apperr.ErrExpired.
func (s *TokenService) consume(ctx context.Context, tx store.Store, raw string, typ model.LinkTokenType) (u model.User, expired bool, err error) {
	tok, err := tx.LinkTokens().GetByHash(ctx, utils.HashToken(raw), typ)
	if err != nil {
		return u, false, err
	}
	if err := tx.LinkTokens().Delete(ctx, tok.ID); err != nil {
		return u, false, err
	}
	if tok.Expired(s.now()) {
		return u, true, nil
	}
	u, err = tx.Users().GetByID(ctx, tok.UserID)
	return u, false, err
}

// Consume validates and burns a token, returning its owner.
func (s *TokenService) Consume(ctx context.Context, raw string, typ model.LinkTokenType) (model.User, error) {
	var (
		u       model.User
		expired bool
	)
	err := s.st.InTx(ctx, func(tx store.Store) error {
		var err error
		u, expired, err = s.consume(ctx, tx, raw, typ)
		return err
	})
	if err != nil {
		return model.User{}, err
	}
	if expired {
		return model.User{}, errors.Wrap(apperr.ErrExpired, "link token")
	}
	return u, nil
}

// Activate consumes an activation token and marks its owner activated. A
// token belonging to an already activated user is burned and rejected.
func (s *TokenService) Activate(ctx context.Context, raw string) (model.User, error) {
	var (
		u         model.User
		expired   bool
		activated bool
	)
	err := s.st.InTx(ctx, func(tx store.Store) error {
		var err error
		u, expired, err = s.consume(ctx, tx, raw, model.LinkTokenActivation)
		if err != nil || expired {
			return err
		}
		if u.Activated {
			activated = true
			return nil
		}
		u.Activated = true
		return tx.Users().SetActivated(ctx, u.ID, true)
	})
	switch {
	case err != nil:
		return model.User{}, err
	case expired:
		return model.User{}, errors.Wrap(apperr.ErrExpired, "activation link")
	case activated:
		return model.User{}, errors.Wrap(apperr.ErrConflict, "account already activated")
	}
	return u, nil
}

// ResendActivation issues a new activation link. Unknown emails are
// accepted silently so the endpoint cannot be used to probe accounts.
func (s *TokenService) ResendActivation(ctx context.Context, email string) error {
	u, err := s.st.Users().GetByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if u.Activated {
		return errors.Wrap(apperr.ErrConflict, "account already activated")
	}
	return s.st.InTx(ctx, func(tx store.Store) error {
		return s.issueActivation(ctx, tx, u)
	})
}

// RequestPasswordReset mails a password reset link. Unknown emails are
// accepted silently.
func (s *TokenService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.st.Users().GetByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.st.InTx(ctx, func(tx store.Store) error {
		raw, err := s.Issue(ctx, tx, u, model.LinkTokenPasswordReset)
		if err != nil {
			return err
		}
		return s.mailer.SendPasswordResetMail(ctx, u.Email, s.mailer.PasswordResetLink(raw))
	})
}

// ResetPassword sets a new password using a reset token. The token must
// exist first; a password/confirmation mismatch is then reported without
// touching the token, and only after that is expiry checked.
func (s *TokenService) ResetPassword(ctx context.Context, raw, password, confirm string) error {
	hash := utils.HashToken(raw)
	if _, err := s.st.LinkTokens().GetByHash(ctx, hash, model.LinkTokenPasswordReset); err != nil {
		return err
	}
	if password != confirm {
		return errors.Wrap(apperr.ErrValidationMismatch, "passwords do not match")
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Internal(err, "hash password")
	}
	var expired bool
	err = s.st.InTx(ctx, func(tx store.Store) error {
		u, exp, err := s.consume(ctx, tx, raw, model.LinkTokenPasswordReset)
		if err != nil || exp {
			expired = exp
			return err
		}
		return tx.Users().SetPasswordHash(ctx, u.ID, digest)
	})
	if err != nil {
		return err
	}
	if expired {
		return errors.Wrap(apperr.ErrExpired, "password reset link")
	}
	return nil
}

// ChangePassword replaces the password of a signed-in user.
func (s *TokenService) ChangePassword(ctx context.Context, userID uint64, oldPassword, password, confirm string) error {
	u, err := s.st.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(oldPassword, u.PasswordHash) {
		return errors.Wrap(apperr.ErrUnauthenticated, "current password is wrong")
	}
	if password != confirm {
		return errors.Wrap(apperr.ErrValidationMismatch, "passwords do not match")
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Internal(err, "hash password")
	}
	return s.st.Users().SetPasswordHash(ctx, u.ID, digest)
}
