package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrHashFormat is returned by VerifyPassword when the stored digest cannot be
// parsed as an Argon2id PHC string.
var ErrHashFormat = errors.New("invalid hash format")

// HashPassword returns a PHC-format Argon2id digest of password. A fresh random
// salt is embedded in every digest.
func HashPassword(password string) (string, error) {
	p, err := GetPepper()
	if err != nil {
		return "", err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(password+p), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the digest. A mismatch is
// (false, nil); a digest that is not a valid Argon2id PHC string yields an
// error wrapping ErrHashFormat.
func VerifyPassword(password, digest string) (bool, error) {
	d, err := parseDigest(digest)
	if err != nil {
		return false, err
	}

	p, err := GetPepper()
	if err != nil {
		return false, err
	}

	// #nosec G115 -- key length comes from a decoded digest, far below uint32.
	computed := argon2.IDKey([]byte(password+p), d.salt, d.time, d.memory, d.threads, uint32(len(d.key)))
	return subtle.ConstantTimeCompare(computed, d.key) == 1, nil
}

type phcDigest struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

// parseDigest splits $argon2id$v=19$m=X,t=Y,p=Z$salt$key.
func parseDigest(digest string) (phcDigest, error) {
	var d phcDigest

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" {
		return d, fmt.Errorf("%w: expected 6 segments", ErrHashFormat)
	}
	if parts[1] != "argon2id" {
		return d, fmt.Errorf("%w: algorithm %q", ErrHashFormat, parts[1])
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return d, fmt.Errorf("%w: version %q", ErrHashFormat, parts[2])
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &d.memory, &d.time, &d.threads); err != nil {
		return d, fmt.Errorf("%w: parameters: %v", ErrHashFormat, err)
	}
	if d.memory == 0 || d.time == 0 || d.threads == 0 {
		return d, fmt.Errorf("%w: zero parameter", ErrHashFormat)
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return d, fmt.Errorf("%w: salt: %v", ErrHashFormat, err)
	}
	if d.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return d, fmt.Errorf("%w: key: %v", ErrHashFormat, err)
	}
	if len(d.salt) == 0 || len(d.key) == 0 {
		return d, fmt.Errorf("%w: empty salt or key", ErrHashFormat)
	}
	return d, nil
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePassword returns a random alphanumeric password of the given length.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("password length must be positive, got %d", length)
	}

	out := make([]byte, length)
	limit := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}
