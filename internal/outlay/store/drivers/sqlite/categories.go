package sqlite

import (
	"context"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
)

type categoriesRepo struct {
	q dbtx
}

func (r *categoriesRepo) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO categories (id, team_id, name, monthly_budget, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.TeamID, c.Name, c.MonthlyBudget, c.CreatedAt, c.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *categoriesRepo) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.q.QueryRowContext(ctx,
		`SELECT id, team_id, name, monthly_budget, created_at, updated_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.TeamID, &c.Name, &c.MonthlyBudget, &c.CreatedAt, &c.UpdatedAt)
	return c, mapNotFound(err)
}

func (r *categoriesRepo) ListTeamCategories(ctx context.Context, teamID string) ([]domain.Category, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, team_id, name, monthly_budget, created_at, updated_at
		FROM categories
		WHERE team_id = ?
		ORDER BY name ASC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.TeamID, &c.Name, &c.MonthlyBudget, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *categoriesRepo) UpdateCategoryBudget(ctx context.Context, id string, monthlyBudget int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE categories SET monthly_budget = ?, updated_at = ? WHERE id = ?`,
		monthlyBudget, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *categoriesRepo) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
