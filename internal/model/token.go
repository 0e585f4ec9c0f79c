package model

import "time"

// LinkTokenType distinguishes the purpose of an emailed link token.
type LinkTokenType string

const (
	LinkTokenActivation    LinkTokenType = "ACTIVATION"
	LinkTokenPasswordReset LinkTokenType = "PASSWORD_RESET"
)

// LinkToken models a row in `link_tokens`. Only the SHA-256 digest of the
// plaintext value is persisted; the plaintext leaves the process once, inside
// an email.
type LinkToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	Type      LinkTokenType
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at instant now.
func (t LinkToken) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user; only its SHA-256 hash is stored. Tokens are
// rotated on every use and swept daily once expired.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t RefreshToken) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }
