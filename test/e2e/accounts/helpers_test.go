package accounts_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/aussiebroadwan/accounts/internal/accounts/app"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

/*
 * Common constants and helper functions for accounts service end-to-end tests.
 * The service runs in-process against a throwaway PostgreSQL container and is
 * driven exclusively through the accountsdk client.
 */

const (
	apiPrefix     = "/api/v1"
	adminUsername = "admin"
	adminPassword = "Admin123!secret"
	userPassword  = "pw12345678"
)

// startPostgres runs a database container and returns its connection string.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
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
	return dsn
}

// setupService starts the accounts service with relaxed rate limits and
// returns an SDK client pointed at it. mutate may tighten the config.
func setupService(t *testing.T, mutate ...func(*app.Config)) *accountsdk.Client {
	t.Helper()

	cfg := app.Config{
		ProjectName:        "Accounts API",
		APIPrefix:          apiPrefix,
		SecretKey:          []byte("e2e-secret-e2e-secret-e2e-secret"),
		Algorithm:          "HS256",
		AccessTokenTTL:     30 * time.Minute,
		RateLimitPerMinute: 1000,
		// Tests log in far more often than production clients would
		LoginLimit: httpx.RateLimitConfig{
			RequestsPerWindow: 1000,
			Window:            time.Minute,
			Burst:             1000,
		},
		CORSOrigins:          []string{"*"},
		DatabaseURL:          startPostgres(t),
		PepperFile:           filepath.Join(t.TempDir(), "pepper"),
		AdminUsername:        adminUsername,
		AdminPassword:        adminPassword,
		AdminName:            "Administrator",
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Minute,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	application, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	return accountsdk.NewClient(srv.URL, apiPrefix)
}

// registerAndLogin creates a regular user and returns a session for it.
func registerAndLogin(t *testing.T, client *accountsdk.Client, username string) (accountsdk.UserResponse, *accountsdk.Session) {
	t.Helper()

	user, err := client.Register(t.Context(), accountsdk.RegisterRequest{
		Name:     "Test " + username,
		Username: username,
		Password: userPassword,
	})
	require.NoError(t, err)

	session, err := client.Login(t.Context(), username, userPassword, "")
	require.NoError(t, err)
	return user, session
}

func adminSession(t *testing.T, client *accountsdk.Client) *accountsdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), adminUsername, adminPassword, "")
	require.NoError(t, err)
	return session
}

// requireAPIError asserts err is an APIError with the given status.
func requireAPIError(t *testing.T, err error, status int) *accountsdk.APIError {
	t.Helper()

	var apiErr *accountsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Message)
	return apiErr
}

// currentCode returns the TOTP code for secret at the current time.
func currentCode(t *testing.T, secret string) string {
	t.Helper()

	code, err := totp.GenerateCodeCustom(secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}
