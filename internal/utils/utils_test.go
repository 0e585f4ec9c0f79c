package utils

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	u := model.User{ID: 42, Username: "xlogin00", Role: model.RoleTeacher}
	at, err := NewAccessToken("secret", "wis2", u, time.Now(), time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), at.Exp, 5*time.Second)

	claims, err := ParseAccessToken("secret", "wis2", at.Token)
	require.NoError(t, err)
	assert.Equal(t, "xlogin00", claims.Subject)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, model.RoleTeacher, claims.Role)
	assert.Equal(t, "wis2", claims.Issuer)
}

func TestParseAccessTokenRejects(t *testing.T) {
	u := model.User{ID: 1, Username: "a", Role: model.RoleUser}

	at, err := NewAccessToken("secret", "wis2", u, time.Now(), time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("other", "wis2", at.Token)
	assert.Error(t, err, "wrong secret")
	_, err = ParseAccessToken("secret", "someone-else", at.Token)
	assert.Error(t, err, "wrong issuer")

	expired, err := NewAccessToken("secret", "wis2", u, time.Now(), -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", "wis2", expired.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokensFollowInjectedClock(t *testing.T) {
	now := time.Date(2031, 3, 3, 9, 0, 0, 0, time.UTC)
	u := model.User{ID: 7, Username: "b", Role: model.RoleUser}

	at, err := NewAccessToken("secret", "wis2", u, now, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), at.Exp)
	_, err = ParseAccessTokenAt("secret", "wis2", at.Token, now.Add(30*time.Second))
	assert.NoError(t, err)
	_, err = ParseAccessTokenAt("secret", "wis2", at.Token, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	rt, err := NewRefreshToken(now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), rt.Exp)
}

func TestRandomURLTokenCarries256Bits(t *testing.T) {
	tok, err := RandomURLToken(32)
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	other, err := RandomURLToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}

func TestHasher(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("pwd")
	require.NoError(t, err)
	assert.True(t, h.Verify("pwd", hash))
	assert.False(t, h.Verify("nope", hash))
}
