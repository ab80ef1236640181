package http

import (
	"net/http"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/service"
	"github.com/outlaydev/outlay/pkg/httpx"
	"github.com/outlaydev/outlay/pkg/outlaysdk"
	"github.com/outlaydev/outlay/pkg/slogx"
)

// TeamsHandler serves team management endpoints.
type TeamsHandler struct {
	TeamService *service.TeamService
}

func toSDKTeam(t domain.Team) outlaysdk.Team {
	return outlaysdk.Team{
		ID:        t.ID,
		Name:      t.Name,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

// AddMemberRequest adds an existing user to a team.
type AddMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// HandleCreateTeam handles POST /v1/teams
//
//	@Summary		Create a team
//	@Description	Creates a team with the caller as its owner.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		outlaysdk.CreateTeamRequest	true	"Team name"
//	@Success		201		{object}	outlaysdk.Team
//	@Router			/v1/teams [post].
func (h *TeamsHandler) HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req outlaysdk.CreateTeamRequest
	if !bindJSON(w, r, &req) {
		return
	}

	team, err := h.TeamService.CreateTeam(ctx, req.Name, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toSDKTeam(team))
}

// HandleListTeams handles GET /v1/teams
//
//	@Summary		List teams
//	@Description	Lists the teams the caller belongs to.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	outlaysdk.ListTeamsResponse
//	@Router			/v1/teams [get].
func (h *TeamsHandler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	teams, err := h.TeamService.ListTeams(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	out := outlaysdk.ListTeamsResponse{Teams: make([]outlaysdk.Team, 0, len(teams))}
	for _, t := range teams {
		out.Teams = append(out.Teams, toSDKTeam(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleAddMember handles POST /v1/teams/{teamID}/members
//
//	@Summary		Add a team member
//	@Description	Adds an existing user to the team. Owners only.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Accept			json
//	@Param			teamID	path	string				true	"Team ID"
//	@Param			request	body	AddMemberRequest	true	"User to add"
//	@Success		204
//	@Failure		403	{object}	outlaysdk.ErrorResponse	"Caller is not a team owner"
//	@Router			/v1/teams/{teamID}/members [post].
func (h *TeamsHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req AddMemberRequest
	if !bindJSON(w, r, &req) {
		return
	}

	err := h.TeamService.AddMember(ctx, r.PathValue("teamID"), req.UserID, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
