package http

import (
	"net/http"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/service"
	"github.com/outlaydev/outlay/pkg/httpx"
	"github.com/outlaydev/outlay/pkg/outlaysdk"
	"github.com/outlaydev/outlay/pkg/slogx"
)

// CategoriesHandler serves expense category endpoints.
type CategoriesHandler struct {
	CategoryService *service.CategoryService
}

func toSDKCategory(c domain.Category) outlaysdk.Category {
	return outlaysdk.Category{
		ID:            c.ID,
		TeamID:        c.TeamID,
		Name:          c.Name,
		MonthlyBudget: c.MonthlyBudget,
		CreatedAt:     c.CreatedAt,
	}
}

// UpdateBudgetRequest changes a category's monthly budget.
type UpdateBudgetRequest struct {
	MonthlyBudget int64 `json:"monthlyBudget" validate:"gte=0"`
}

// HandleCreateCategory handles POST /v1/categories
//
//	@Summary		Create a category
//	@Description	Creates an expense category inside a team. Category names are unique per team.
//	@Tags			Categories
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		outlaysdk.CreateCategoryRequest	true	"Category"
//	@Success		201		{object}	outlaysdk.Category
//	@Failure		409		{object}	outlaysdk.ErrorResponse	"Name already in use"
//	@Router			/v1/categories [post].
func (h *CategoriesHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req outlaysdk.CreateCategoryRequest
	if !bindJSON(w, r, &req) {
		return
	}

	category, err := h.CategoryService.CreateCategory(ctx, req.TeamID, req.Name, req.MonthlyBudget, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toSDKCategory(category))
}

// HandleListCategories handles GET /v1/categories
//
//	@Summary		List categories
//	@Description	Lists the categories of one team.
//	@Tags			Categories
//	@Security		BearerAuth
//	@Produce		json
//	@Param			teamId	query		string	true	"Team ID"
//	@Success		200		{object}	outlaysdk.ListCategoriesResponse
//	@Router			/v1/categories [get].
func (h *CategoriesHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	teamID := r.URL.Query().Get("teamId")
	if teamID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Query parameter 'teamId' is required.")
		return
	}

	categories, err := h.CategoryService.ListCategories(ctx, teamID, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	out := outlaysdk.ListCategoriesResponse{Categories: make([]outlaysdk.Category, 0, len(categories))}
	for _, c := range categories {
		out.Categories = append(out.Categories, toSDKCategory(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdateBudget handles PUT /v1/categories/{categoryID}/budget
//
//	@Summary		Update a category budget
//	@Description	Sets the monthly budget of a category, in cents. Owners only.
//	@Tags			Categories
//	@Security		BearerAuth
//	@Accept			json
//	@Param			categoryID	path	string				true	"Category ID"
//	@Param			request		body	UpdateBudgetRequest	true	"New budget"
//	@Success		204
//	@Failure		403	{object}	outlaysdk.ErrorResponse	"Caller is not a team owner"
//	@Router			/v1/categories/{categoryID}/budget [put].
func (h *CategoriesHandler) HandleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UpdateBudgetRequest
	if !bindJSON(w, r, &req) {
		return
	}

	err := h.CategoryService.UpdateBudget(ctx, r.PathValue("categoryID"), req.MonthlyBudget, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
