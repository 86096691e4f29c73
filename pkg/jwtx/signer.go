package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer turns claims into a compact signed JWT.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// hmacMethods are the algorithms a shared secret can sign with.
var hmacMethods = map[string]*jwt.SigningMethodHMAC{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// SupportedHMAC reports whether alg names an HMAC algorithm this package signs with.
func SupportedHMAC(alg string) bool {
	_, ok := hmacMethods[alg]
	return ok
}

func hmacMethod(alg string, secret []byte) (*jwt.SigningMethodHMAC, error) {
	m, ok := hmacMethods[alg]
	if !ok {
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty HMAC secret")
	}
	return m, nil
}

// HMACSigner signs with a shared secret.
type HMACSigner struct {
	method *jwt.SigningMethodHMAC
	secret []byte
}

// NewSignerHMAC returns a signer for one of HS256, HS384 or HS512.
func NewSignerHMAC(alg string, secret []byte) (*HMACSigner, error) {
	m, err := hmacMethod(alg, secret)
	if err != nil {
		return nil, err
	}
	return &HMACSigner{method: m, secret: secret}, nil
}

func (s *HMACSigner) Alg() string { return s.method.Alg() }

// Sign serialises claims and signs them with the configured algorithm.
func (s *HMACSigner) Sign(c Claims) (string, error) {
	return jwt.NewWithClaims(s.method, c).SignedString(s.secret)
}
