package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
)

type challengesRepo struct {
	q dbtx
}

const challengeColumns = `id, user_id, purpose, method, pending_totp, webauthn_session, attempts, created_at, expires_at`

func scanChallenge(row interface{ Scan(...any) error }) (domain.Challenge, error) {
	var (
		c      domain.Challenge
		method sql.NullString
		totp   sql.NullString
		waSess sql.NullString
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Purpose, &method, &totp, &waSess, &c.Attempts, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		return domain.Challenge{}, err
	}
	c.Method = mapNullStringPtr(method)
	c.PendingTOTP = mapNullStringPtr(totp)
	c.WebAuthnSession = mapNullStringPtr(waSess)
	return c, nil
}

func (r *challengesRepo) CreateChallenge(ctx context.Context, c domain.Challenge) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO challenges (id, user_id, purpose, method, pending_totp, webauthn_session, attempts, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Purpose,
		mapOptionalString(c.Method), mapOptionalString(c.PendingTOTP), mapOptionalString(c.WebAuthnSession),
		c.Attempts, c.CreatedAt, c.ExpiresAt,
	)
	return mapConstraint(err)
}

func (r *challengesRepo) GetChallenge(ctx context.Context, id string) (domain.Challenge, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id)
	c, err := scanChallenge(row)
	return c, mapNotFound(err)
}

// UpdateChallengeMethod rewrites the row in place, including the primary
// key, so a method choice can rotate the challenge ID atomically.
func (r *challengesRepo) UpdateChallengeMethod(ctx context.Context, oldID string, c domain.Challenge) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE challenges
		SET id = ?, method = ?, pending_totp = ?, webauthn_session = ?, expires_at = ?
		WHERE id = ?`,
		c.ID, mapOptionalString(c.Method), mapOptionalString(c.PendingTOTP), mapOptionalString(c.WebAuthnSession),
		c.ExpiresAt, oldID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *challengesRepo) IncrementChallengeAttempts(ctx context.Context, id string) (domain.Challenge, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE challenges SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return domain.Challenge{}, err
	}
	if err := requireRowAffected(res); err != nil {
		return domain.Challenge{}, err
	}
	return r.GetChallenge(ctx, id)
}

// DeleteChallenge consumes a challenge. Absence is not an error; the
// caller interprets a later lookup miss as expiry.
func (r *challengesRepo) DeleteChallenge(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id)
	return err
}

func (r *challengesRepo) DeleteExpiredChallenges(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM challenges WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
