package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the access-token claim set. The subject carries the user id; the
// remaining registered claims are informational except exp.
type Claims struct {
	jwt.RegisteredClaims
}

// NewAccessClaims builds claims for subject that expire ttl after now. NumericDate
// has whole-second precision, so exp is rounded up: the token is never rejected
// before now+ttl and outlives it by less than a second.
func NewAccessClaims(subject, jti string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(ttl))),
			ID:        jti,
		},
	}
}

func ceilSecond(t time.Time) time.Time {
	if f := t.Truncate(time.Second); f.Before(t) {
		return f.Add(time.Second)
	}
	return t
}
