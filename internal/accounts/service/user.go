package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128

	DefaultPageSize = 100
	MaxPageSize     = 100
)

// RegisterInput is the self-service sign-up payload.
type RegisterInput struct {
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Password string  `json:"password"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Username, validation.Required, validation.Length(3, 64)),
		validation.Field(&in.Email, validation.Length(3, 254), is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(MinPasswordLength, MaxPasswordLength)),
	)
}

// UpdateProfileInput changes the caller's own record. Nil or empty fields are
// left as they are.
type UpdateProfileInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (in UpdateProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Length(1, 200)),
		validation.Field(&in.Email, validation.Length(3, 254), is.Email),
		validation.Field(&in.Password, validation.Length(MinPasswordLength, MaxPasswordLength)),
	)
}

// UserPage is one slice of the user listing.
type UserPage struct {
	Users []domain.User
	Total int64
	Skip  int
	Limit int
}

type UserService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register creates an active, non-admin user. A taken username or email is a
// *DuplicateFieldError.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = trimOptional(in.Email)

	if err := asValidationError(in.Validate()); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		Name:           in.Name,
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := ensureUsernameFree(ctx, tx, user.Username); err != nil {
			return err
		}
		if err := ensureEmailFree(ctx, tx, user.Email, 0); err != nil {
			return err
		}

		user, err = tx.Users().CreateUser(ctx, user)
		return mapDuplicate(err)
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// UpdateProfile applies in to user. Changing the email to one held by another
// account is a *DuplicateFieldError.
func (s *UserService) UpdateProfile(ctx context.Context, user domain.User, in UpdateProfileInput) (domain.User, error) {
	in.Name = trimOptional(in.Name)
	in.Email = trimOptional(in.Email)
	if in.Password != nil && *in.Password == "" {
		in.Password = nil
	}

	if err := asValidationError(in.Validate()); err != nil {
		return domain.User{}, err
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().LockUserByID(ctx, user.ID)
		if err != nil {
			return mapNotFound(err)
		}

		if in.Name != nil {
			current.Name = *in.Name
		}
		if in.Email != nil {
			if err := ensureEmailFree(ctx, tx, in.Email, current.ID); err != nil {
				return err
			}
			current.Email = in.Email
		}
		if in.Password != nil {
			hash, err := cryptox.HashPassword(*in.Password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			current.HashedPassword = hash
		}
		current.UpdatedAt = s.now()

		updated, err = tx.Users().UpdateUser(ctx, current)
		return mapDuplicate(err)
	})
	if err != nil {
		return domain.User{}, err
	}
	return updated, nil
}

// ListUsers returns a page ordered by id. limit is clamped to [1, MaxPageSize]
// and a negative skip is treated as zero.
func (s *UserService) ListUsers(ctx context.Context, skip, limit int) (UserPage, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)

	users, err := s.Store.Users().ListUsers(ctx, skip, limit)
	if err != nil {
		return UserPage{}, fmt.Errorf("list users: %w", err)
	}
	total, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		return UserPage{}, fmt.Errorf("count users: %w", err)
	}

	return UserPage{Users: users, Total: total, Skip: skip, Limit: limit}, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return user, nil
}

// SetAdmin sets the admin flag on the user with id.
func (s *UserService) SetAdmin(ctx context.Context, id int64, isAdmin bool) (domain.User, error) {
	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().LockUserByID(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}

		user.IsAdmin = isAdmin
		user.UpdatedAt = s.now()

		updated, err = tx.Users().UpdateUser(ctx, user)
		return mapNotFound(err)
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("admin flag changed",
		slog.Int64("user_id", id),
		slog.Bool("is_admin", isAdmin),
	)
	return updated, nil
}

func ensureUsernameFree(ctx context.Context, tx store.Tx, username string) error {
	_, err := tx.Users().GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return &DuplicateFieldError{Field: "username"}
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("lookup username: %w", err)
	}
}

// ensureEmailFree passes when email is nil or held by selfID.
func ensureEmailFree(ctx context.Context, tx store.Tx, email *string, selfID int64) error {
	if email == nil {
		return nil
	}

	owner, err := tx.Users().GetUserByEmail(ctx, *email)
	switch {
	case err == nil:
		if owner.ID == selfID {
			return nil
		}
		return &DuplicateFieldError{Field: "email"}
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("lookup email: %w", err)
	}
}

// mapDuplicate covers the race where a concurrent insert wins after the
// explicit checks.
func mapDuplicate(err error) error {
	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		return &DuplicateFieldError{Field: dup.Field}
	}
	return err
}

func mapNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// trimOptional trims s and treats a blank value as absent.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
