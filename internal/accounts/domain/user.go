package domain

import "time"

// User is an account record as held by the store.
type User struct {
	ID             int64
	Name           string
	Username       string
	Email          *string // unique when set
	HashedPassword string  // argon2id PHC string
	IsActive       bool
	IsAdmin        bool

	TOTPSecret    *string    // base32, set once enrolment starts
	TOTPEnabledAt *time.Time // nil until enrolment is confirmed

	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin *time.Time
}

// TOTPEnabled reports whether login requires a one-time code.
func (u User) TOTPEnabled() bool {
	return u.TOTPEnabledAt != nil && u.TOTPSecret != nil && *u.TOTPSecret != ""
}
