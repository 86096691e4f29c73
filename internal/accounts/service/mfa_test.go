package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestMFA_EnrollConfirmDisable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "pw12345678")

	code := func(secret string) string {
		c, err := totp.GenerateCodeCustom(secret, f.clock.Now(), totpValidateOpts)
		require.NoError(t, err)
		return c
	}

	_, err := f.mfa.Confirm(ctx, alice, "123456")
	require.ErrorIs(t, err, ErrTOTPNotEnrolled)

	_, err = f.mfa.Disable(ctx, alice, "123456")
	require.ErrorIs(t, err, ErrTOTPNotEnabled)

	enrollment, err := f.mfa.Enroll(ctx, alice)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.URL, "otpauth://totp/")
	require.Equal(t, "alice", enrollment.Account)

	// A second enrolment replaces the pending secret.
	enrollment, err = f.mfa.Enroll(ctx, alice)
	require.NoError(t, err)

	_, err = f.mfa.Confirm(ctx, alice, "not-a-code")
	require.ErrorIs(t, err, ErrInvalidTOTPCode)

	u, err := f.mfa.Confirm(ctx, alice, code(enrollment.Secret))
	require.NoError(t, err)
	require.True(t, u.TOTPEnabled())

	_, err = f.mfa.Enroll(ctx, u)
	require.ErrorIs(t, err, ErrTOTPAlreadyEnabled)

	_, err = f.mfa.Confirm(ctx, alice, code(enrollment.Secret))
	require.ErrorIs(t, err, ErrTOTPAlreadyEnabled)

	// Codes from far outside the skew window are refused.
	stale := code(enrollment.Secret)
	f.clock.Advance(5 * time.Minute)
	_, err = f.mfa.Disable(ctx, alice, stale)
	require.ErrorIs(t, err, ErrInvalidTOTPCode)

	u, err = f.mfa.Disable(ctx, alice, code(enrollment.Secret))
	require.NoError(t, err)
	require.False(t, u.TOTPEnabled())
	require.Nil(t, u.TOTPSecret)
}
