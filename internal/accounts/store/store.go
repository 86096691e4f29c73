package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// DuplicateError reports a unique constraint violation on Field. It matches
// ErrAlreadyExists with errors.Is.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string { return "store: duplicate " + e.Field }

func (e *DuplicateError) Unwrap() error { return ErrAlreadyExists }

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Repositories hang off it so a transaction scoped Store
// exposes exactly the same surface.
type Store interface {
	Users() Users

	ApplyMigrations(ctx context.Context) error

	// Tx starts a read/write transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// LockUserByID reads the row for a read-modify-write. Inside a transaction
	// the row stays locked against other writers until commit.
	LockUserByID(ctx context.Context, id int64) (domain.User, error)

	// ListUsers returns users ordered by id.
	ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// CreateUser inserts u and returns it with the assigned ID. A clash on
	// username or email is a *DuplicateError.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// UpdateUser overwrites every mutable column of the row with u.ID.
	// CreatedAt is never written.
	UpdateUser(ctx context.Context, u domain.User) (domain.User, error)

	// UpdateLastLogin sets last_login and updated_at to at and touches no
	// other column.
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}
