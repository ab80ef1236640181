package service

import (
	"context"
	"errors"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/pkg/idx"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryTaken    = errors.New("category name already used in this team")
)

type CategoryService struct {
	Store store.Store
	Teams *TeamService
}

func (s *CategoryService) CreateCategory(ctx context.Context, teamID, name string, monthlyBudget int64, userID string) (domain.Category, error) {
	if err := s.Teams.RequireMember(ctx, teamID, userID); err != nil {
		return domain.Category{}, err
	}

	category := domain.Category{
		ID:            idx.New().String(),
		TeamID:        teamID,
		Name:          name,
		MonthlyBudget: monthlyBudget,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.Store.Categories().CreateCategory(ctx, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Category{}, ErrCategoryTaken
		}
		return domain.Category{}, err
	}
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, teamID, userID string) ([]domain.Category, error) {
	if err := s.Teams.RequireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	return s.Store.Categories().ListTeamCategories(ctx, teamID)
}

func (s *CategoryService) UpdateBudget(ctx context.Context, categoryID string, monthlyBudget int64, userID string) error {
	category, err := s.Store.Categories().GetCategoryByID(ctx, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return err
	}
	if err := s.Teams.requireOwner(ctx, category.TeamID, userID); err != nil {
		return err
	}
	return s.Store.Categories().UpdateCategoryBudget(ctx, categoryID, monthlyBudget)
}
