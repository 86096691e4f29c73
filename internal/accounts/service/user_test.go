package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, RegisterInput{
		Name:     "Alice",
		Username: "  alice ",
		Email:    ptr("alice@example.com"),
		Password: "pw12345678",
	})
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	require.Equal(t, "alice", u.Username)
	require.True(t, u.IsActive)
	require.False(t, u.IsAdmin)
	require.NotEqual(t, "pw12345678", u.HashedPassword)

	ok, err := cryptox.VerifyPassword("pw12345678", u.HashedPassword)
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := f.users.Register(ctx, RegisterInput{Name: "A2", Username: "alice", Password: "pw12345678"})

		var dup *DuplicateFieldError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, "username", dup.Field)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.users.Register(ctx, RegisterInput{
			Name: "Other", Username: "other", Email: ptr("alice@example.com"), Password: "pw12345678",
		})

		var dup *DuplicateFieldError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, "email", dup.Field)
	})

	t.Run("blank email is absent", func(t *testing.T) {
		u, err := f.users.Register(ctx, RegisterInput{
			Name: "Blank", Username: "blank", Email: ptr("  "), Password: "pw12345678",
		})
		require.NoError(t, err)
		require.Nil(t, u.Email)
	})

	t.Run("invalid payload", func(t *testing.T) {
		_, err := f.users.Register(ctx, RegisterInput{
			Username: "x", Email: ptr("not-an-email"), Password: "short",
		})
		require.ErrorIs(t, err, ErrValidation)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		require.Contains(t, verr.Fields, "name")
		require.Contains(t, verr.Fields, "username")
		require.Contains(t, verr.Fields, "email")
		require.Contains(t, verr.Fields, "password")
	})
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "pw12345678")
	bob, err := f.users.Register(ctx, RegisterInput{
		Name: "Bob", Username: "bob", Email: ptr("bob@example.com"), Password: "pw12345678",
	})
	require.NoError(t, err)

	t.Run("changes provided fields only", func(t *testing.T) {
		u, err := f.users.UpdateProfile(ctx, alice, UpdateProfileInput{
			Name:  ptr("Alice Liddell"),
			Email: ptr("alice@example.com"),
		})
		require.NoError(t, err)
		require.Equal(t, "Alice Liddell", u.Name)
		require.Equal(t, "alice@example.com", *u.Email)
		require.Equal(t, alice.HashedPassword, u.HashedPassword)
	})

	t.Run("empty fields are ignored", func(t *testing.T) {
		u, err := f.users.UpdateProfile(ctx, alice, UpdateProfileInput{Name: ptr(""), Password: ptr("")})
		require.NoError(t, err)
		require.Equal(t, "Alice Liddell", u.Name)
	})

	t.Run("keeping own email is allowed", func(t *testing.T) {
		_, err := f.users.UpdateProfile(ctx, alice, UpdateProfileInput{Email: ptr("alice@example.com")})
		require.NoError(t, err)
	})

	t.Run("email held by another user", func(t *testing.T) {
		_, err := f.users.UpdateProfile(ctx, alice, UpdateProfileInput{Email: bob.Email})

		var dup *DuplicateFieldError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, "email", dup.Field)
	})

	t.Run("password change", func(t *testing.T) {
		_, err := f.users.UpdateProfile(ctx, alice, UpdateProfileInput{Password: ptr("new-password-1")})
		require.NoError(t, err)

		_, ok, err := f.auth.Authenticate(ctx, "alice", "new-password-1")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := f.users.UpdateProfile(ctx, alice, UpdateProfileInput{Password: ptr("short")})
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := range 3 {
		f.register(t, fmt.Sprintf("user%d", i), "pw12345678")
	}

	page, err := f.users.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Users, 3)
	require.EqualValues(t, 3, page.Total)
	require.Equal(t, DefaultPageSize, page.Limit)

	page, err = f.users.ListUsers(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	require.Equal(t, "user1", page.Users[0].Username)

	page, err = f.users.ListUsers(ctx, -5, 5000)
	require.NoError(t, err)
	require.Equal(t, 0, page.Skip)
	require.Equal(t, MaxPageSize, page.Limit)
}

func TestGetUserAndSetAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "pw12345678")

	_, err := f.users.GetUser(ctx, 4242)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.users.SetAdmin(ctx, 4242, true)
	require.ErrorIs(t, err, ErrNotFound)

	u, err := f.users.SetAdmin(ctx, alice.ID, true)
	require.NoError(t, err)
	require.True(t, u.IsAdmin)

	got, err := f.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, got.IsAdmin)

	_, err = RequireAdmin(got)
	require.NoError(t, err)

	u, err = f.users.SetAdmin(ctx, alice.ID, false)
	require.NoError(t, err)
	require.False(t, u.IsAdmin)
}
