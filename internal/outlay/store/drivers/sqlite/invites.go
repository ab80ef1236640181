package sqlite

import (
	"context"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
)

type invitesRepo struct {
	q dbtx
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invites (id, token_hash, user_id, created_by, expires_at, used, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.UserID, inv.CreatedBy, inv.ExpiresAt, inv.Used, inv.CreatedAt, inv.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *invitesRepo) GetActiveInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	var inv domain.Invite
	err := r.q.QueryRowContext(ctx, `
		SELECT id, token_hash, user_id, created_by, expires_at, used, created_at, updated_at
		FROM invites
		WHERE token_hash = ? AND used = 0 AND expires_at > ?`,
		hash, time.Now().UTC(),
	).Scan(&inv.ID, &inv.TokenHash, &inv.UserID, &inv.CreatedBy, &inv.ExpiresAt, &inv.Used, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, mapNotFound(err)
}

func (r *invitesRepo) MarkInviteUsed(ctx context.Context, inviteID string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE invites SET used = 1, updated_at = ? WHERE id = ? AND used = 0`,
		time.Now().UTC(), inviteID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *invitesRepo) DeleteExpiredInvites(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM invites WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
