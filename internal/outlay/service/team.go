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

var (
	ErrTeamNotFound  = errors.New("team not found")
	ErrNotTeamMember = errors.New("not a member of this team")
	ErrNotTeamOwner  = errors.New("requires team owner")
	ErrAlreadyMember = errors.New("already a member of this team")
)

type TeamService struct {
	Store store.Store
}

// CreateTeam creates a team and makes the creator its owner, atomically.
func (s *TeamService) CreateTeam(ctx context.Context, name, createdBy string) (domain.Team, error) {
	log := slogx.FromContext(ctx)

	team := domain.Team{
		ID:        idx.New().String(),
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Teams().CreateTeam(ctx, team); err != nil {
			return err
		}
		return tx.Teams().AddMember(ctx, domain.TeamMember{
			TeamID:   team.ID,
			UserID:   createdBy,
			Role:     "owner",
			JoinedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return domain.Team{}, err
	}

	log.Info("team created", slog.String("team_id", team.ID), slog.String("created_by", createdBy))
	return team, nil
}

// ListTeams returns the teams the user belongs to.
func (s *TeamService) ListTeams(ctx context.Context, userID string) ([]domain.Team, error) {
	return s.Store.Teams().ListUserTeams(ctx, userID)
}

// AddMember adds a user to a team. Only owners may add members.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID, addedBy string) error {
	if err := s.requireOwner(ctx, teamID, addedBy); err != nil {
		return err
	}

	err := s.Store.Teams().AddMember(ctx, domain.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		Role:     "member",
		JoinedAt: time.Now().UTC(),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrAlreadyMember
	}
	return err
}

// RequireMember checks that the user belongs to the team. The expense,
// category and report services gate every team-scoped operation on it.
func (s *TeamService) RequireMember(ctx context.Context, teamID, userID string) error {
	_, err := s.Store.Teams().GetMember(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotTeamMember
	}
	return err
}

func (s *TeamService) requireOwner(ctx context.Context, teamID, userID string) error {
	m, err := s.Store.Teams().GetMember(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotTeamMember
	}
	if err != nil {
		return err
	}
	if m.Role != "owner" {
		return ErrNotTeamOwner
	}
	return nil
}
