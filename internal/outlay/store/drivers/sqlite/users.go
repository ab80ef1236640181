package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
)

type usersRepo struct {
	q dbtx
}

const userColumns = `id, email, name, role, password_hash, mfa_method, mfa_enabled, totp_secret, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u          domain.User
		mfaMethod  sql.NullString
		mfaEnabled sql.NullTime
		totpSecret sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash,
		&mfaMethod, &mfaEnabled, &totpSecret,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.MFAMethod = mapNullStringPtr(mfaMethod)
	u.MFAEnabled = mapNullTimePtr(mfaEnabled)
	u.TOTPSecret = mapNullStringPtr(totpSecret)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	return u, mapNotFound(err)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)
	u, err := scanUser(row)
	return u, mapNotFound(err)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, password_hash, mfa_method, mfa_enabled, totp_secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Role, u.PasswordHash,
		mapOptionalString(u.MFAMethod), mapOptionalTime(u.MFAEnabled), mapOptionalString(u.TOTPSecret),
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) SetMFA(ctx context.Context, userID string, method string, totpSecret *string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET mfa_method = ?, mfa_enabled = ?, totp_secret = ?, updated_at = ? WHERE id = ?`,
		method, time.Now().UTC(), mapOptionalString(totpSecret), time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) ClearMFA(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET mfa_method = NULL, mfa_enabled = NULL, totp_secret = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
