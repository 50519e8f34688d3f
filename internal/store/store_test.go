package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/hugh/secretstuffs/internal/auth"
	"github.com/hugh/secretstuffs/internal/database/models"
	"github.com/hugh/secretstuffs/internal/store"
	"github.com/hugh/secretstuffs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := testutil.TestContext(t)

	user := &models.User{Email: "alice@x.com", FirstName: "Alice", LastName: "Liddell", PasswordHash: "hash"}
	require.NoError(t, s.Users().Create(ctx, user))
	assert.NotZero(t, user.ID)

	t.Run("find by email and id", func(t *testing.T) {
		byEmail, err := s.Users().FindByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.False(t, byEmail.Active)

		byID, err := s.Users().FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@x.com", byID.Email)
	})

	t.Run("missing rows translate to ErrNotFound", func(t *testing.T) {
		_, err := s.Users().FindByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, auth.ErrNotFound)

		_, err = s.Users().FindByID(ctx, 9999)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("duplicate email translates to ErrDuplicate", func(t *testing.T) {
		dup := &models.User{Email: "alice@x.com", FirstName: "A", LastName: "L", PasswordHash: "hash"}
		assert.ErrorIs(t, s.Users().Create(ctx, dup), auth.ErrDuplicate)
	})

	t.Run("activate only flips inactive users", func(t *testing.T) {
		n, err := s.Users().Activate(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = s.Users().Activate(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = s.Users().Activate(ctx, "nobody@x.com")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("list pages in id order", func(t *testing.T) {
		testutil.CreateTestUser(t, db, true)
		testutil.CreateTestUser(t, db, false)

		users, total, err := s.Users().List(ctx, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, users, 2)
		assert.Equal(t, user.ID, users[0].ID)

		users, _, err = s.Users().List(ctx, 2, 2)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Users().Delete(ctx, user))
		_, err := s.Users().FindByEmail(ctx, "alice@x.com")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestResetTokenRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := testutil.TestContext(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	live := &models.ResetToken{Token: "live", UserEmail: "alice@x.com", ExpiresAt: now.Add(time.Hour)}
	stale := &models.ResetToken{Token: "stale", UserEmail: "alice@x.com", ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, s.ResetTokens().Save(ctx, live))
	require.NoError(t, s.ResetTokens().Save(ctx, stale))

	t.Run("token values are unique", func(t *testing.T) {
		dup := &models.ResetToken{Token: "live", UserEmail: "bob@x.com", ExpiresAt: now}
		assert.ErrorIs(t, s.ResetTokens().Save(ctx, dup), auth.ErrDuplicate)
	})

	t.Run("find by token", func(t *testing.T) {
		rt, err := s.ResetTokens().FindByToken(ctx, "live")
		require.NoError(t, err)
		assert.Equal(t, "alice@x.com", rt.UserEmail)
		assert.False(t, rt.IsExpired(now))
		assert.True(t, rt.IsExpired(now.Add(time.Hour+time.Nanosecond)))

		_, err = s.ResetTokens().FindByToken(ctx, "missing")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("delete expired keeps live tokens", func(t *testing.T) {
		n, err := s.ResetTokens().DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = s.ResetTokens().FindByToken(ctx, "live")
		assert.NoError(t, err)
	})

	t.Run("delete reports rows affected", func(t *testing.T) {
		n, err := s.ResetTokens().Delete(ctx, live)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = s.ResetTokens().Delete(ctx, live)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestStore_WithinTx(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := testutil.TestContext(t)

	t.Run("error rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithinTx(ctx, func(tx auth.Store) error {
			user := &models.User{Email: "rollback@x.com", FirstName: "R", LastName: "B", PasswordHash: "hash"}
			if err := tx.Users().Create(ctx, user); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = s.Users().FindByEmail(ctx, "rollback@x.com")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("success commits", func(t *testing.T) {
		err := s.WithinTx(ctx, func(tx auth.Store) error {
			user := &models.User{Email: "commit@x.com", FirstName: "C", LastName: "M", PasswordHash: "hash"}
			return tx.Users().Create(ctx, user)
		})
		require.NoError(t, err)

		_, err = s.Users().FindByEmail(ctx, "commit@x.com")
		assert.NoError(t, err)
	})
}
