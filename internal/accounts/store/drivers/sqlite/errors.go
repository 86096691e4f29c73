package sqlite

import (
	"errors"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// mapConstraint turns a unique violation on users into a *store.DuplicateError
// naming the offending column.
func mapConstraint(err error) error {
	var liteErr *msqlite.Error
	if !errors.As(err, &liteErr) {
		return err
	}

	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		// Message format: "UNIQUE constraint failed: users.email"
		field := "username"
		if strings.Contains(liteErr.Error(), "users.email") {
			field = "email"
		}
		return &store.DuplicateError{Field: field}
	default:
		return err
	}
}
