package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/pkg/idx"
	"github.com/outlaydev/outlay/pkg/slogx"
)

const defaultExpensePageSize = 100

var (
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrInvalidExpense    = errors.New("invalid expense")
	ErrCategoryMismatch  = errors.New("category belongs to a different team")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type ExpenseService struct {
	Store store.Store
	Teams *TeamService
}

// CreateExpense records a pending expense. The category must belong to
// the same team and the date must be a real calendar day.
func (s *ExpenseService) CreateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	log := slogx.FromContext(ctx)

	if err := s.Teams.RequireMember(ctx, e.TeamID, e.UserID); err != nil {
		return domain.Expense{}, err
	}
	if e.Amount <= 0 {
		return domain.Expense{}, ErrInvalidExpense
	}
	if _, err := time.Parse("2006-01-02", e.OccurredOn); err != nil {
		return domain.Expense{}, ErrInvalidExpense
	}

	category, err := s.Store.Categories().GetCategoryByID(ctx, e.CategoryID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Expense{}, ErrCategoryNotFound
	}
	if err != nil {
		return domain.Expense{}, err
	}
	if category.TeamID != e.TeamID {
		return domain.Expense{}, ErrCategoryMismatch
	}

	e.ID = idx.New().String()
	e.Status = domain.ExpenseStatusPending
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt

	if err := s.Store.Expenses().CreateExpense(ctx, e); err != nil {
		return domain.Expense{}, err
	}

	log.Info("expense recorded",
		slog.String("expense_id", e.ID),
		slog.String("team_id", e.TeamID),
		slog.Int64("amount", e.Amount),
	)
	return e, nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context, teamID, userID string, limit, offset int) ([]domain.Expense, error) {
	if err := s.Teams.RequireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultExpensePageSize {
		limit = defaultExpensePageSize
	}
	return s.Store.Expenses().ListTeamExpenses(ctx, teamID, limit, offset)
}

// SetStatus moves an expense between review states. Only pending
// expenses can be approved or rejected, and only by a team owner.
func (s *ExpenseService) SetStatus(ctx context.Context, expenseID, status, userID string) (domain.Expense, error) {
	if status != domain.ExpenseStatusApproved && status != domain.ExpenseStatusRejected {
		return domain.Expense{}, ErrInvalidTransition
	}

	expense, err := s.Store.Expenses().GetExpenseByID(ctx, expenseID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Expense{}, ErrExpenseNotFound
	}
	if err != nil {
		return domain.Expense{}, err
	}
	if err := s.Teams.requireOwner(ctx, expense.TeamID, userID); err != nil {
		return domain.Expense{}, err
	}
	if expense.Status != domain.ExpenseStatusPending {
		return domain.Expense{}, ErrInvalidTransition
	}

	if err := s.Store.Expenses().UpdateExpenseStatus(ctx, expenseID, status); err != nil {
		return domain.Expense{}, err
	}
	expense.Status = status
	return expense, nil
}
