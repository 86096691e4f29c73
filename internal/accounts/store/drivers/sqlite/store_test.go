package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations(context.Background()))
	return s
}

func strPtr(s string) *string { return &s }

func newUser(username string, email *string) domain.User {
	return domain.User{
		Name:           "Test " + username,
		Username:       username,
		Email:          email,
		HashedPassword: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		IsActive:       true,
		CreatedAt:      t0,
		UpdatedAt:      t0,
	}
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations(context.Background()))
}

func TestUsers_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Users().CreateUser(ctx, newUser("alice", strPtr("alice@example.com")))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	byID, err := s.Users().GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)
	require.Equal(t, "Test alice", byID.Name)
	require.Equal(t, "alice@example.com", *byID.Email)
	require.True(t, byID.IsActive)
	require.False(t, byID.IsAdmin)
	require.Nil(t, byID.LastLogin)
	require.Nil(t, byID.TOTPSecret)
	require.True(t, t0.Equal(byID.CreatedAt))

	byName, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	byEmail, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)
}

func TestUsers_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Users().GetUserByID(ctx, 999)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().UpdateUser(ctx, domain.User{ID: 999, UpdatedAt: t0})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_Duplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Users().CreateUser(ctx, newUser("alice", strPtr("a@example.com")))
	require.NoError(t, err)

	t.Run("username", func(t *testing.T) {
		_, err := s.Users().CreateUser(ctx, newUser("alice", strPtr("other@example.com")))
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		var dup *store.DuplicateError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, "username", dup.Field)
	})

	t.Run("email", func(t *testing.T) {
		_, err := s.Users().CreateUser(ctx, newUser("bob", strPtr("a@example.com")))

		var dup *store.DuplicateError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, "email", dup.Field)
	})

	t.Run("many users without email", func(t *testing.T) {
		_, err := s.Users().CreateUser(ctx, newUser("carol", nil))
		require.NoError(t, err)
		_, err = s.Users().CreateUser(ctx, newUser("dave", nil))
		require.NoError(t, err)
	})

	t.Run("update onto taken email", func(t *testing.T) {
		eve, err := s.Users().CreateUser(ctx, newUser("eve", nil))
		require.NoError(t, err)

		eve.Email = strPtr("a@example.com")
		_, err = s.Users().UpdateUser(ctx, eve)

		var dup *store.DuplicateError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, "email", dup.Field)
	})
}

func TestUsers_Update(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.Users().CreateUser(ctx, newUser("alice", nil))
	require.NoError(t, err)

	later := t0.Add(time.Hour)
	u.Name = "Alice A."
	u.Email = strPtr("alice@example.com")
	u.IsAdmin = true
	u.LastLogin = &later
	u.TOTPSecret = strPtr("JBSWY3DPEHPK3PXP")
	u.TOTPEnabledAt = &later
	u.UpdatedAt = later
	u.CreatedAt = later // must be ignored

	_, err = s.Users().UpdateUser(ctx, u)
	require.NoError(t, err)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice A.", got.Name)
	require.Equal(t, "alice@example.com", *got.Email)
	require.True(t, got.IsAdmin)
	require.NotNil(t, got.LastLogin)
	require.True(t, later.Equal(*got.LastLogin))
	require.True(t, got.TOTPEnabled())
	require.True(t, t0.Equal(got.CreatedAt))
	require.True(t, later.Equal(got.UpdatedAt))

	got.Email = nil
	_, err = s.Users().UpdateUser(ctx, got)
	require.NoError(t, err)

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.Email)
}

func TestUsers_UpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.Users().CreateUser(ctx, newUser("alice", nil))
	require.NoError(t, err)
	u.IsAdmin = true
	_, err = s.Users().UpdateUser(ctx, u)
	require.NoError(t, err)

	later := t0.Add(time.Hour)
	require.NoError(t, s.Users().UpdateLastLogin(ctx, u.ID, later))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.IsAdmin)
	require.NotNil(t, got.LastLogin)
	require.True(t, later.Equal(*got.LastLogin))
	require.True(t, later.Equal(got.UpdatedAt))

	err = s.Users().UpdateLastLogin(ctx, 999, later)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_ConcurrentReadModifyWrite(t *testing.T) {
	ctx := context.Background()

	dsn := "file:" + filepath.Join(t.TempDir(), "accounts.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	s, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations(ctx))

	u, err := s.Users().CreateUser(ctx, newUser("alice", nil))
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Go(func() {
			errs <- s.WithTx(ctx, func(tx store.Tx) error {
				cur, err := tx.Users().LockUserByID(ctx, u.ID)
				if err != nil {
					return err
				}
				cur.Name += "!"
				_, err = tx.Users().UpdateUser(ctx, cur)
				return err
			})
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Name+strings.Repeat("!", writers), got.Name)
}

func TestUsers_ListAndCount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := range 5 {
		_, err := s.Users().CreateUser(ctx, newUser(fmt.Sprintf("user%d", i), nil))
		require.NoError(t, err)
	}

	n, err := s.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 5, n)

	page, err := s.Users().ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "user1", page[0].Username)
	require.Equal(t, "user2", page[1].Username)

	tail, err := s.Users().ListUsers(ctx, 4, 100)
	require.NoError(t, err)
	require.Len(t, tail, 1)

	empty, err := s.Users().ListUsers(ctx, 10, 100)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	t.Run("commits on success", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Users().CreateUser(ctx, newUser("committed", nil))
			return err
		})
		require.NoError(t, err)

		_, err = s.Users().GetUserByUsername(ctx, "committed")
		require.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if _, err := tx.Users().CreateUser(ctx, newUser("rolled", nil)); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Users().GetUserByUsername(ctx, "rolled")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("nested transactions are refused", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})
}
