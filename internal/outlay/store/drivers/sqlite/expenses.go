package sqlite

import (
	"context"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
)

type expensesRepo struct {
	q dbtx
}

const expenseColumns = `id, team_id, category_id, user_id, amount, currency, note, occurred_on, status, created_at, updated_at`

func scanExpense(row interface{ Scan(...any) error }) (domain.Expense, error) {
	var e domain.Expense
	err := row.Scan(
		&e.ID, &e.TeamID, &e.CategoryID, &e.UserID,
		&e.Amount, &e.Currency, &e.Note, &e.OccurredOn, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *expensesRepo) CreateExpense(ctx context.Context, e domain.Expense) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO expenses (id, team_id, category_id, user_id, amount, currency, note, occurred_on, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TeamID, e.CategoryID, e.UserID,
		e.Amount, e.Currency, e.Note, e.OccurredOn, e.Status,
		e.CreatedAt, e.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *expensesRepo) GetExpenseByID(ctx context.Context, id string) (domain.Expense, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	return e, mapNotFound(err)
}

func (r *expensesRepo) ListTeamExpenses(ctx context.Context, teamID string, limit, offset int) ([]domain.Expense, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE team_id = ?
		ORDER BY occurred_on DESC, created_at DESC
		LIMIT ? OFFSET ?`, teamID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *expensesRepo) UpdateExpenseStatus(ctx context.Context, id string, status string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE expenses SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *expensesRepo) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// SummarizeTeamExpenses aggregates non-rejected expenses per category
// per month. occurred_on is stored as YYYY-MM-DD text, so substr gives
// the month bucket and plain string comparison gives the range.
func (r *expensesRepo) SummarizeTeamExpenses(ctx context.Context, teamID, from, to string) ([]domain.SummaryLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT e.category_id, c.name, substr(e.occurred_on, 1, 7) AS month,
		       SUM(e.amount) AS total, COUNT(*) AS n
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.team_id = ? AND e.status != 'rejected'
		  AND e.occurred_on >= ? AND e.occurred_on <= ?
		GROUP BY e.category_id, c.name, month
		ORDER BY month ASC, c.name ASC`, teamID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SummaryLine
	for rows.Next() {
		var line domain.SummaryLine
		if err := rows.Scan(&line.CategoryID, &line.CategoryName, &line.Month, &line.Total, &line.Count); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}
