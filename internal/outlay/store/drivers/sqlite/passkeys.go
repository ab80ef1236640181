package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
)

type passkeysRepo struct {
	q dbtx
}

const passkeyColumns = `id, user_id, credential_id, public_key, aaguid, sign_count, transports, backup_state, created_at, last_used_at`

func scanPasskey(row interface{ Scan(...any) error }) (domain.Passkey, error) {
	var (
		p          domain.Passkey
		transports string
		lastUsed   sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.CredentialID, &p.PublicKey, &p.AAGUID,
		&p.SignCount, &transports, &p.BackupState, &p.CreatedAt, &lastUsed,
	)
	if err != nil {
		return domain.Passkey{}, err
	}
	p.Transports = splitList(transports)
	p.LastUsedAt = mapNullTimePtr(lastUsed)
	return p, nil
}

func (r *passkeysRepo) CreatePasskey(ctx context.Context, p domain.Passkey) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO passkeys (id, user_id, credential_id, public_key, aaguid, sign_count, transports, backup_state, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.CredentialID, p.PublicKey, p.AAGUID,
		p.SignCount, joinList(p.Transports), p.BackupState, p.CreatedAt, mapOptionalTime(p.LastUsedAt),
	)
	return mapConstraint(err)
}

func (r *passkeysRepo) GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (domain.Passkey, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+passkeyColumns+` FROM passkeys WHERE credential_id = ?`, credentialID)
	p, err := scanPasskey(row)
	return p, mapNotFound(err)
}

func (r *passkeysRepo) ListUserPasskeys(ctx context.Context, userID string) ([]domain.Passkey, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+passkeyColumns+` FROM passkeys WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Passkey
	for rows.Next() {
		p, err := scanPasskey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *passkeysRepo) UpdatePasskeySignCount(ctx context.Context, id string, signCount uint32) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE passkeys SET sign_count = ?, last_used_at = ? WHERE id = ?`,
		signCount, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *passkeysRepo) DeletePasskey(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM passkeys WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
