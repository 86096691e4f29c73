package postgres

import (
	"errors"

	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// mapConstraint turns a unique violation into a *store.DuplicateError keyed
// by the constraint names declared in the migrations.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case "users_email_key":
		return &store.DuplicateError{Field: "email"}
	case "users_username_key":
		return &store.DuplicateError{Field: "username"}
	default:
		return store.ErrAlreadyExists
	}
}
