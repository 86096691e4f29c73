package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// TokenType is returned to clients alongside every access token.
const TokenType = "bearer"

// dummyDigest is verified against when the username does not exist so that a
// failed lookup costs the same as a failed password check.
const dummyDigest = "$argon2id$v=19$m=19456,t=2,p=1$c29tZXNhbHRzb21lc2FsdA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Gate is a single authorization check on a resolved user. Gates return the
// user unchanged on success so they can be chained.
type Gate func(domain.User) (domain.User, error)

// AuthService resolves bearer tokens to users and authenticates passwords.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ResolveUser validates token and loads its subject. Every failure other than
// a store outage is ErrInvalidCredentials.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	userID, err := s.Tokens.Validate(token)
	if err != nil {
		l.Debug("token rejected", slog.Any("error", err))
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		l.Debug("token subject not found", slog.Int64("user_id", userID))
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user %d: %w", userID, err)
	}
	return user, nil
}

// RequireActive rejects disabled accounts.
func RequireActive(user domain.User) (domain.User, error) {
	if !user.IsActive {
		return domain.User{}, ErrInactiveUser
	}
	return user, nil
}

// RequireAdmin rejects non-admins. It checks RequireActive first, so a
// disabled admin never passes.
func RequireAdmin(user domain.User) (domain.User, error) {
	user, err := RequireActive(user)
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsAdmin {
		return domain.User{}, ErrInsufficientPrivilege
	}
	return user, nil
}

// Authenticate checks username and password. A missing user, a wrong
// password and an unparsable stored digest are indistinguishable: all yield
// ok=false with a nil error. Store and pepper failures are returned.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.User, bool, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.User{}, false, fmt.Errorf("lookup user: %w", err)
		}
		_, _ = cryptox.VerifyPassword(password, dummyDigest)
		return domain.User{}, false, nil
	}

	ok, err := cryptox.VerifyPassword(password, user.HashedPassword)
	if errors.Is(err, cryptox.ErrHashFormat) {
		l.Error("stored password digest unusable",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return domain.User{}, false, nil
	}
	return user, true, nil
}

// RecordLogin stamps last_login on userID with the current time and returns
// it. No other column is written.
func (s *AuthService) RecordLogin(ctx context.Context, userID int64) (time.Time, error) {
	now := s.now()
	if err := s.Store.Users().UpdateLastLogin(ctx, userID, now); err != nil {
		return time.Time{}, fmt.Errorf("record login: %w", err)
	}
	return now, nil
}

// Login authenticates the user, checks the second factor when enrolled and
// issues an access token. Wrong passwords, unknown users and bad codes all
// yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password, otpCode string) (domain.AccessToken, error) {
	l := slogx.FromContext(ctx)

	user, ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return domain.AccessToken{}, err
	}
	if !ok {
		l.Info("login failed", slog.String("username", username))
		return domain.AccessToken{}, ErrInvalidCredentials
	}

	if user.TOTPEnabled() && !validateTOTP(otpCode, *user.TOTPSecret, s.now()) {
		l.Info("login failed: bad second factor", slog.Int64("user_id", user.ID))
		return domain.AccessToken{}, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.ID, 0)
	if err != nil {
		return domain.AccessToken{}, err
	}

	if _, err := s.RecordLogin(ctx, user.ID); err != nil {
		return domain.AccessToken{}, err
	}

	l.Info("login succeeded",
		slog.Int64("user_id", user.ID),
		slog.String("token_fp", cryptox.FingerprintToken(token)),
	)

	return domain.AccessToken{
		Token:     token,
		Type:      TokenType,
		ExpiresIn: int64(s.Tokens.TTL().Seconds()),
	}, nil
}
