package http

import (
	"net/http"

	"github.com/outlaydev/outlay/internal/outlay/service"
	"github.com/outlaydev/outlay/pkg/httpx"
	"github.com/outlaydev/outlay/pkg/outlaysdk"
	"github.com/outlaydev/outlay/pkg/slogx"
)

// ReportsHandler serves spending report endpoints.
type ReportsHandler struct {
	ReportService *service.ReportService
}

// HandleSummary handles GET /v1/reports/summary
//
//	@Summary		Spending summary
//	@Description	Aggregates a team's spending per category and month over an inclusive
//	@Description	date range. Rejected expenses are excluded.
//	@Tags			Reports
//	@Security		BearerAuth
//	@Produce		json
//	@Param			teamId	query		string	true	"Team ID"
//	@Param			from	query		string	true	"Start date (YYYY-MM-DD)"
//	@Param			to		query		string	true	"End date (YYYY-MM-DD)"
//	@Success		200		{object}	outlaysdk.SummaryResponse
//	@Failure		400		{object}	outlaysdk.ErrorResponse	"Malformed or inverted date range"
//	@Router			/v1/reports/summary [get].
func (h *ReportsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	q := r.URL.Query()
	teamID, from, to := q.Get("teamId"), q.Get("from"), q.Get("to")
	if teamID == "" || from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Query parameters 'teamId', 'from' and 'to' are required.")
		return
	}

	summary, err := h.ReportService.Summarize(ctx, teamID, from, to, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	out := outlaysdk.SummaryResponse{
		TeamID: summary.TeamID,
		From:   summary.From,
		To:     summary.To,
		Lines:  make([]outlaysdk.SummaryLine, 0, len(summary.Lines)),
		Total:  summary.Total,
	}
	for _, line := range summary.Lines {
		out.Lines = append(out.Lines, outlaysdk.SummaryLine{
			CategoryID:   line.CategoryID,
			CategoryName: line.CategoryName,
			Month:        line.Month,
			Total:        line.Total,
			Count:        line.Count,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
