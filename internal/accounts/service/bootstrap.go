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

const generatedAdminPasswordLength = 24

var errStoreNotEmpty = errors.New("store not empty")

// AdminSeed describes the administrator created on first start.
type AdminSeed struct {
	Username string
	Password string // generated and logged once when empty
	Name     string
	Email    *string
}

type BootstrapService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

// SeedAdmin creates seed as an active admin when the store holds no users.
// It reports whether a user was created. A blank username disables seeding.
func (s *BootstrapService) SeedAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	l := slogx.FromContext(ctx)

	if seed.Username == "" {
		return false, nil
	}

	generated := false
	if seed.Password == "" {
		pw, err := cryptox.GeneratePassword(generatedAdminPasswordLength)
		if err != nil {
			return false, err
		}
		seed.Password = pw
		generated = true
	}
	if seed.Name == "" {
		seed.Name = "Administrator"
	}

	hash, err := cryptox.HashPassword(seed.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	var admin domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Users().CountUsers(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return errStoreNotEmpty
		}

		admin, err = tx.Users().CreateUser(ctx, domain.User{
			Name:           seed.Name,
			Username:       seed.Username,
			Email:          seed.Email,
			HashedPassword: hash,
			IsActive:       true,
			IsAdmin:        true,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		return err
	})
	if errors.Is(err, errStoreNotEmpty) {
		l.Debug("users present, skipping admin seed")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	attrs := []any{slog.Int64("user_id", admin.ID), slog.String("username", admin.Username)}
	if generated {
		attrs = append(attrs, slog.String("password", seed.Password))
		l.Warn("seeded admin user with generated password, change it after first login", attrs...)
	} else {
		l.Info("seeded admin user", attrs...)
	}
	return true, nil
}
