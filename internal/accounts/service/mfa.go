package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod = 30
	totpSkew   = 1 // accept one step either side of now
)

var totpValidateOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Skew:      totpSkew,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// validateTOTP reports whether code is valid for secret at now. Malformed
// secrets and codes are simply invalid.
func validateTOTP(code, secret string, now time.Time) bool {
	if code == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, now, totpValidateOpts)
	return err == nil && ok
}

// MFAService manages the optional TOTP second factor. Enrolment is two step:
// Enroll stores a pending secret, Confirm enables it once the user proves
// their authenticator produces matching codes.
type MFAService struct {
	Store  store.Store
	Issuer string

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *MFAService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Enroll generates a fresh secret for user, replacing any pending one.
func (s *MFAService) Enroll(ctx context.Context, user domain.User) (domain.TOTPEnrollment, error) {
	if user.TOTPEnabled() {
		return domain.TOTPEnrollment{}, ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Username,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	secret := key.Secret()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().LockUserByID(ctx, user.ID)
		if err != nil {
			return mapNotFound(err)
		}
		if current.TOTPEnabled() {
			return ErrTOTPAlreadyEnabled
		}

		current.TOTPSecret = &secret
		current.TOTPEnabledAt = nil
		current.UpdatedAt = s.now()
		_, err = tx.Users().UpdateUser(ctx, current)
		return err
	})
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}

	return domain.TOTPEnrollment{
		Secret:  secret,
		URL:     key.URL(),
		Issuer:  s.Issuer,
		Account: user.Username,
	}, nil
}

// Confirm enables TOTP after checking code against the pending secret.
func (s *MFAService) Confirm(ctx context.Context, user domain.User, code string) (domain.User, error) {
	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().LockUserByID(ctx, user.ID)
		if err != nil {
			return mapNotFound(err)
		}

		switch {
		case current.TOTPEnabled():
			return ErrTOTPAlreadyEnabled
		case current.TOTPSecret == nil || *current.TOTPSecret == "":
			return ErrTOTPNotEnrolled
		}

		now := s.now()
		if !validateTOTP(code, *current.TOTPSecret, now) {
			return ErrInvalidTOTPCode
		}

		current.TOTPEnabledAt = &now
		current.UpdatedAt = now
		updated, err = tx.Users().UpdateUser(ctx, current)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("TOTP enabled", slog.Int64("user_id", user.ID))
	return updated, nil
}

// Disable removes the second factor. A current code is required.
func (s *MFAService) Disable(ctx context.Context, user domain.User, code string) (domain.User, error) {
	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().LockUserByID(ctx, user.ID)
		if err != nil {
			return mapNotFound(err)
		}
		if !current.TOTPEnabled() {
			return ErrTOTPNotEnabled
		}

		now := s.now()
		if !validateTOTP(code, *current.TOTPSecret, now) {
			return ErrInvalidTOTPCode
		}

		current.TOTPSecret = nil
		current.TOTPEnabledAt = nil
		current.UpdatedAt = now
		updated, err = tx.Users().UpdateUser(ctx, current)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("TOTP disabled", slog.Int64("user_id", user.ID))
	return updated, nil
}
