package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
)

const userColumns = `id, name, username, email, hashed_password, is_active, is_admin,
	totp_secret, totp_enabled_at, created_at, updated_at, last_login`

type usersRepo struct {
	q querier
}

func (r *usersRepo) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = ?`, arg)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, "username", username)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, "email", email)
}

// LockUserByID is a plain read. Write transactions begin IMMEDIATE (see
// the _txlock DSN parameter), so the row cannot change before commit.
func (r *usersRepo) LockUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *usersRepo) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO users (name, username, email, hashed_password, is_active, is_admin,
			totp_secret, totp_enabled_at, created_at, updated_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Username, mapOptionalString(u.Email), u.HashedPassword, u.IsActive, u.IsAdmin,
		mapOptionalString(u.TOTPSecret), mapOptionalTime(u.TOTPEnabledAt),
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(), mapOptionalTime(u.LastLogin),
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, fmt.Errorf("last insert id: %w", err)
	}
	u.ID = id
	return u, nil
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			name = ?, email = ?, hashed_password = ?, is_active = ?, is_admin = ?,
			totp_secret = ?, totp_enabled_at = ?, updated_at = ?, last_login = ?
		WHERE id = ?`,
		u.Name, mapOptionalString(u.Email), u.HashedPassword, u.IsActive, u.IsAdmin,
		mapOptionalString(u.TOTPSecret), mapOptionalTime(u.TOTPEnabledAt),
		u.UpdatedAt.UTC(), mapOptionalTime(u.LastLogin), u.ID,
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, err
	}
	if n == 0 {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), at.UTC(), id,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
