package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/atticlabs/attic-auth/internal/identity/domain"
	"github.com/atticlabs/attic-auth/internal/identity/store"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, first_name, last_name, email, password_hash,
	account_id, role_id, status, reset_token, reset_token_expires_at,
	last_login_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u          domain.User
		accountID  sql.NullString
		status     string
		resetToken sql.NullString
		resetExp   sql.NullTime
		lastLogin  sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&accountID, &u.RoleID, &status, &resetToken, &resetExp,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.AccountID = mapNullString(accountID)
	u.Status = domain.Status(status)
	u.ResetToken = mapNullString(resetToken)
	u.ResetTokenExpiresAt = mapNullTimePtr(resetExp)
	u.LastLoginAt = mapNullTimePtr(lastLogin)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	var resetExp sql.NullTime
	if u.ResetTokenExpiresAt != nil {
		resetExp = sql.NullTime{Time: *u.ResetTokenExpiresAt, Valid: true}
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (
			id, first_name, last_name, email, password_hash,
			account_id, role_id, status, reset_token,
			reset_token_expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash,
		mapStringNull(u.AccountID), u.RoleID, string(u.Status),
		mapStringNull(u.ResetToken), resetExp, now, now,
	)
	return mapConflict(err)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

func (r *usersRepo) ListUsersByAccount(ctx context.Context, accountID string) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE account_id = ? ORDER BY created_at`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		   SET reset_token = ?, reset_token_expires_at = ?, updated_at = ?
		 WHERE id = ?`,
		token, expiresAt, time.Now().UTC(), userID,
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

// ConsumeResetToken is the single-use enforcement point: one conditional
// UPDATE keyed on the current token value, so two requests racing on the
// same token cannot both succeed.
func (r *usersRepo) ConsumeResetToken(ctx context.Context, userID, token, passwordHash string, at time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		   SET password_hash = ?, status = ?, reset_token = NULL,
		       reset_token_expires_at = NULL, updated_at = ?
		 WHERE id = ? AND reset_token = ?`,
		passwordHash, string(domain.StatusActive), at, userID, token,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *usersRepo) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		at, time.Now().UTC(), userID)
	return err
}
