package http

import (
	"net/http"
	"strconv"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/service"
	"github.com/outlaydev/outlay/pkg/httpx"
	"github.com/outlaydev/outlay/pkg/outlaysdk"
	"github.com/outlaydev/outlay/pkg/slogx"
)

// ExpensesHandler serves expense recording and review endpoints.
type ExpensesHandler struct {
	ExpenseService *service.ExpenseService
}

func toSDKExpense(e domain.Expense) outlaysdk.Expense {
	return outlaysdk.Expense{
		ID:         e.ID,
		TeamID:     e.TeamID,
		CategoryID: e.CategoryID,
		UserID:     e.UserID,
		Amount:     e.Amount,
		Currency:   e.Currency,
		Note:       e.Note,
		OccurredOn: e.OccurredOn,
		Status:     e.Status,
		CreatedAt:  e.CreatedAt,
	}
}

// SetStatusRequest moves a pending expense to approved or rejected.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// HandleCreateExpense handles POST /v1/expenses
//
//	@Summary		Record an expense
//	@Description	Records a pending expense against a team category. Amounts are integer cents.
//	@Tags			Expenses
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		outlaysdk.CreateExpenseRequest	true	"Expense"
//	@Success		201		{object}	outlaysdk.Expense
//	@Failure		400		{object}	outlaysdk.ErrorResponse	"Invalid amount, date or category"
//	@Router			/v1/expenses [post].
func (h *ExpensesHandler) HandleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req outlaysdk.CreateExpenseRequest
	if !bindJSON(w, r, &req) {
		return
	}

	expense, err := h.ExpenseService.CreateExpense(ctx, domain.Expense{
		TeamID:     req.TeamID,
		CategoryID: req.CategoryID,
		UserID:     httpx.UserIDFromContext(ctx),
		Amount:     req.Amount,
		Currency:   req.Currency,
		Note:       req.Note,
		OccurredOn: req.OccurredOn,
	})
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toSDKExpense(expense))
}

// HandleListExpenses handles GET /v1/expenses
//
//	@Summary		List expenses
//	@Description	Lists a team's expenses, newest first. Supports limit and offset paging.
//	@Tags			Expenses
//	@Security		BearerAuth
//	@Produce		json
//	@Param			teamId	query		string	true	"Team ID"
//	@Param			limit	query		int		false	"Page size (max 100)"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	outlaysdk.ListExpensesResponse
//	@Router			/v1/expenses [get].
func (h *ExpensesHandler) HandleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	teamID := r.URL.Query().Get("teamId")
	if teamID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Query parameter 'teamId' is required.")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	expenses, err := h.ExpenseService.ListExpenses(ctx, teamID, httpx.UserIDFromContext(ctx), limit, offset)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	out := outlaysdk.ListExpensesResponse{Expenses: make([]outlaysdk.Expense, 0, len(expenses))}
	for _, e := range expenses {
		out.Expenses = append(out.Expenses, toSDKExpense(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleSetStatus handles PUT /v1/expenses/{expenseID}/status
//
//	@Summary		Approve or reject an expense
//	@Description	Moves a pending expense to approved or rejected. Owners only; the
//	@Description	transition is one way.
//	@Tags			Expenses
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			expenseID	path		string				true	"Expense ID"
//	@Param			request		body		SetStatusRequest	true	"Target status"
//	@Success		200			{object}	outlaysdk.Expense
//	@Failure		403			{object}	outlaysdk.ErrorResponse	"Caller is not a team owner"
//	@Failure		409			{object}	outlaysdk.ErrorResponse	"Expense is not pending"
//	@Router			/v1/expenses/{expenseID}/status [put].
func (h *ExpensesHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req SetStatusRequest
	if !bindJSON(w, r, &req) {
		return
	}

	expense, err := h.ExpenseService.SetStatus(ctx, r.PathValue("expenseID"), req.Status, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSDKExpense(expense))
}
