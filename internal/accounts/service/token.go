package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// TokenService issues and validates bearer access tokens whose subject is a
// user id.
type TokenService struct {
	signer   jwtx.Signer
	verifier jwtx.Verifier
	ttl      time.Duration
	now      func() time.Time
}

// TokenConfig is loaded once at startup.
type TokenConfig struct {
	Algorithm string
	Secret    []byte
	TTL       time.Duration
	Leeway    time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	signer, err := jwtx.NewSignerHMAC(cfg.Algorithm, cfg.Secret)
	if err != nil {
		return nil, err
	}
	verifier, err := jwtx.NewVerifierHMAC(cfg.Algorithm, cfg.Secret, jwtx.VerifyOptions{
		Leeway: cfg.Leeway,
		Now:    now,
	})
	if err != nil {
		return nil, err
	}

	return &TokenService{signer: signer, verifier: verifier, ttl: cfg.TTL, now: now}, nil
}

// TTL is the default lifetime used when Issue is given zero.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for userID expiring ttl from now. A non-positive ttl
// uses the configured default.
func (s *TokenService) Issue(userID int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	claims := jwtx.NewAccessClaims(strconv.FormatInt(userID, 10), idx.NewAt(now).String(), ttl, now)

	token, err := s.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// Validate returns the user id carried by token. Any failure, including a
// missing or non-numeric subject, wraps ErrInvalidToken.
func (s *TokenService) Validate(token string) (int64, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return id, nil
}
