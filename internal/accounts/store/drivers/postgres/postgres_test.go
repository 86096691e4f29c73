package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres runs a throwaway database and returns a migrated Store.
func startPostgres(t *testing.T) *postgres.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("accounts"),
		tcpostgres.WithUsername("accounts"),
		tcpostgres.WithPassword("accounts"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := postgres.NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations(ctx))
	return s
}

func TestPostgresStore_Integration(t *testing.T) {
	s := startPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	email := "alice@example.com"

	alice, err := s.Users().CreateUser(ctx, domain.User{
		Name: "Alice", Username: "alice", Email: &email, HashedPassword: "digest",
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NotZero(t, alice.ID)

	_, err = s.Users().CreateUser(ctx, domain.User{
		Name: "Other", Username: "other", Email: &email, HashedPassword: "digest",
		CreatedAt: now, UpdatedAt: now,
	})
	var dup *store.DuplicateError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "email", dup.Field)

	_, err = s.Users().CreateUser(ctx, domain.User{
		Name: "Alice 2", Username: "alice", HashedPassword: "digest",
		CreatedAt: now, UpdatedAt: now,
	})
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "username", dup.Field)

	login := now.Add(time.Minute)
	alice.LastLogin = &login
	alice.IsAdmin = true
	alice.UpdatedAt = login
	_, err = s.Users().UpdateUser(ctx, alice)
	require.NoError(t, err)

	got, err := s.Users().GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.True(t, got.IsAdmin)
	require.True(t, login.Equal(*got.LastLogin))
	require.True(t, now.Equal(got.CreatedAt))

	n, err := s.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// Re-running migrations is a no-op.
	require.NoError(t, s.ApplyMigrations(ctx))
}
