package memory

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

func TestUsersUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := model.User{Username: "xlogin00", Email: " Student@Example.com ", Role: model.RoleUser}
	require.NoError(t, s.Users().Create(ctx, &u))
	assert.Equal(t, "student@example.com", u.Email)

	dup := model.User{Username: "other", Email: "student@example.com"}
	err := s.Users().Create(ctx, &dup)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	got, err := s.Users().GetByEmail(ctx, "STUDENT@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Users().GetByID(ctx, 999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx store.Store) error {
		u := model.User{Username: "a", Email: "a@example.com"}
		if err := tx.Users().Create(ctx, &u); err != nil {
			return err
		}
		return boom
	})
	assert.Equal(t, boom, err)

	_, err = s.Users().GetByUsername(ctx, "a")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	// ids are rolled back together with the rows
	u := model.User{Username: "b", Email: "b@example.com"}
	require.NoError(t, s.Users().Create(ctx, &u))
	assert.EqualValues(t, 1, u.ID)
}

func TestInTxNested(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.InTx(ctx, func(tx store.Store) error {
		return tx.InTx(ctx, func(inner store.Store) error {
			u := model.User{Username: "n", Email: "n@example.com"}
			return inner.Users().Create(ctx, &u)
		})
	})
	require.NoError(t, err)
	_, err = s.Users().GetByUsername(ctx, "n")
	assert.NoError(t, err)
}

func TestItemsBetween(t *testing.T) {
	ctx := context.Background()
	s := New()
	uid := uint64(7)
	sched := model.Schedule{UserID: &uid}
	require.NoError(t, s.Schedules().Create(ctx, &sched))

	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	sunday := monday.AddDate(0, 0, 7)
	mk := func(start time.Time, d time.Duration) model.ScheduleItem {
		it := model.ScheduleItem{Kind: model.TermLecture, Start: start, End: start.Add(d)}
		require.NoError(t, s.Schedules().CreateItem(ctx, &it))
		require.NoError(t, s.Schedules().AddItem(ctx, sched.ID, it.ID))
		require.NoError(t, s.Schedules().AddItem(ctx, sched.ID, it.ID))
		return it
	}
	late := mk(monday.Add(50*time.Hour), time.Hour)
	early := mk(monday.Add(8*time.Hour), time.Hour)
	mk(sunday.Add(time.Hour), time.Hour)
	endsAtMonday := mk(monday.Add(-time.Hour), time.Hour)

	got, err := s.Schedules().ItemsBetween(ctx, sched.ID, monday, sunday)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, endsAtMonday.ID, got[0].ID)
	assert.Equal(t, early.ID, got[1].ID)
	assert.Equal(t, late.ID, got[2].ID)
}

func TestScheduleOwnerExclusive(t *testing.T) {
	ctx := context.Background()
	s := New()
	uid, cid := uint64(1), uint64(2)
	err := s.Schedules().Create(ctx, &model.Schedule{UserID: &uid, CourseID: &cid})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	require.NoError(t, s.Schedules().Create(ctx, &model.Schedule{UserID: &uid}))
	err = s.Schedules().Create(ctx, &model.Schedule{UserID: &uid})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestDeleteExpiredRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now().UTC()
	require.NoError(t, s.RefreshTokens().Create(ctx, &model.RefreshToken{UserID: 1, TokenHash: "old", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, s.RefreshTokens().Create(ctx, &model.RefreshToken{UserID: 1, TokenHash: "new", ExpiresAt: now.Add(time.Hour)}))

	n, err := s.RefreshTokens().DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = s.RefreshTokens().GetByHash(ctx, "new")
	assert.NoError(t, err)
}

func TestTokenDeletesSucceedOnce(t *testing.T) {
	ctx := context.Background()
	s := New()

	rt := model.RefreshToken{UserID: 1, TokenHash: "h", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.RefreshTokens().Create(ctx, &rt))
	require.NoError(t, s.RefreshTokens().DeleteByHash(ctx, "h"))
	assert.True(t, errors.Is(s.RefreshTokens().DeleteByHash(ctx, "h"), apperr.ErrNotFound))

	lt := model.LinkToken{UserID: 1, TokenHash: "l", Type: model.LinkTokenActivation, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.LinkTokens().Create(ctx, &lt))
	require.NoError(t, s.LinkTokens().Delete(ctx, lt.ID))
	assert.True(t, errors.Is(s.LinkTokens().Delete(ctx, lt.ID), apperr.ErrNotFound))
}

func TestFailedTxDropsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.InTx(ctx, func(store.Store) error {
		// a write through the root store, as another request would make
		require.NoError(t, s.RefreshTokens().Create(ctx, &model.RefreshToken{UserID: 1, TokenHash: "side"}))
		return errors.New("boom")
	})
	require.Error(t, err)

	_, err = s.RefreshTokens().GetByHash(ctx, "side")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
