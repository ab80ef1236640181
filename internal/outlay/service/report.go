package service

import (
	"context"
	"errors"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/store"
)

var ErrInvalidDateRange = errors.New("invalid date range")

type ReportService struct {
	Store store.Store
	Teams *TeamService
}

// Summary is a team's per-category monthly spending over a date range.
type Summary struct {
	TeamID string
	From   string
	To     string
	Lines  []domain.SummaryLine
	Total  int64
}

// Summarize aggregates a team's spending between two inclusive
// YYYY-MM-DD dates. Rejected expenses are excluded.
func (s *ReportService) Summarize(ctx context.Context, teamID, from, to, userID string) (Summary, error) {
	if err := s.Teams.RequireMember(ctx, teamID, userID); err != nil {
		return Summary{}, err
	}

	fromDay, err := time.Parse("2006-01-02", from)
	if err != nil {
		return Summary{}, ErrInvalidDateRange
	}
	toDay, err := time.Parse("2006-01-02", to)
	if err != nil {
		return Summary{}, ErrInvalidDateRange
	}
	if toDay.Before(fromDay) {
		return Summary{}, ErrInvalidDateRange
	}

	lines, err := s.Store.Expenses().SummarizeTeamExpenses(ctx, teamID, from, to)
	if err != nil {
		return Summary{}, err
	}

	var total int64
	for _, line := range lines {
		total += line.Total
	}
	return Summary{TeamID: teamID, From: from, To: to, Lines: lines, Total: total}, nil
}
