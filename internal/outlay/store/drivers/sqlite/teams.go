package sqlite

import (
	"context"

	"github.com/outlaydev/outlay/internal/outlay/domain"
)

type teamsRepo struct {
	q dbtx
}

func (r *teamsRepo) CreateTeam(ctx context.Context, t domain.Team) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO teams (id, name, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *teamsRepo) GetTeamByID(ctx context.Context, id string) (domain.Team, error) {
	var t domain.Team
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at, updated_at FROM teams WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	return t, mapNotFound(err)
}

func (r *teamsRepo) ListUserTeams(ctx context.Context, userID string) ([]domain.Team, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_by, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = ?
		ORDER BY t.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *teamsRepo) AddMember(ctx context.Context, m domain.TeamMember) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)`,
		m.TeamID, m.UserID, m.Role, m.JoinedAt,
	)
	return mapConstraint(err)
}

func (r *teamsRepo) GetMember(ctx context.Context, teamID, userID string) (domain.TeamMember, error) {
	var m domain.TeamMember
	err := r.q.QueryRowContext(ctx,
		`SELECT team_id, user_id, role, joined_at FROM team_members WHERE team_id = ? AND user_id = ?`,
		teamID, userID,
	).Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt)
	return m, mapNotFound(err)
}

func (r *teamsRepo) RemoveMember(ctx context.Context, teamID, userID string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = ? AND user_id = ?`, teamID, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
