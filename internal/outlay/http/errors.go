package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/outlaydev/outlay/internal/outlay/service"
	"github.com/outlaydev/outlay/pkg/httpx"
	"github.com/outlaydev/outlay/pkg/outlaysdk"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	httpx.WriteJSON(w, status, outlaysdk.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeServiceError maps service sentinels to the wire error taxonomy.
// Anything unmapped is a 500 with no internal detail leaked.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrChallengeExpired):
		writeError(w, http.StatusGone, "challenge_expired", "challenge expired or already used")
	case errors.Is(err, service.ErrInvalidTOTPCode):
		writeError(w, http.StatusUnauthorized, "invalid_code", "The code you entered was not accepted.")
	case errors.Is(err, service.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, "invalid_credential", "The passkey credential was not accepted.")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Email or password is incorrect.")
	case errors.Is(err, service.ErrPasswordPolicy):
		writeError(w, http.StatusBadRequest, "validation_error", "Password does not meet requirements.")
	case errors.Is(err, service.ErrInvalidInviteToken):
		writeError(w, http.StatusBadRequest, "invalid_token", "Activation token is not valid or has expired.")
	case errors.Is(err, service.ErrAlreadyActivated):
		writeError(w, http.StatusConflict, "already_activated", "This account already has a password.")
	case errors.Is(err, service.ErrInvalidMethod):
		writeError(w, http.StatusBadRequest, "invalid_method", "Unknown MFA method.")
	case errors.Is(err, service.ErrMissingProof):
		writeError(w, http.StatusBadRequest, "invalid_request", "No proof was supplied for the challenge.")
	case errors.Is(err, service.ErrMFANotEnrolled):
		writeError(w, http.StatusBadRequest, "mfa_not_enrolled", "No MFA method is enrolled for this account.")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", "User not found.")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", "This email is already registered.")
	case errors.Is(err, service.ErrTeamNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Team not found.")
	case errors.Is(err, service.ErrNotTeamMember):
		writeError(w, http.StatusForbidden, "forbidden", "You are not a member of this team.")
	case errors.Is(err, service.ErrNotTeamOwner):
		writeError(w, http.StatusForbidden, "forbidden", "This operation requires a team owner.")
	case errors.Is(err, service.ErrAlreadyMember):
		writeError(w, http.StatusConflict, "already_member", "User is already a member of this team.")
	case errors.Is(err, service.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Category not found.")
	case errors.Is(err, service.ErrCategoryTaken):
		writeError(w, http.StatusConflict, "category_taken", "A category with this name already exists.")
	case errors.Is(err, service.ErrCategoryMismatch):
		writeError(w, http.StatusBadRequest, "validation_error", "Category belongs to a different team.")
	case errors.Is(err, service.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Expense not found.")
	case errors.Is(err, service.ErrInvalidExpense):
		writeError(w, http.StatusBadRequest, "validation_error", "Expense is not valid.")
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", "Expense cannot move to that status.")
	case errors.Is(err, service.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, "validation_error", "Date range is not valid.")
	default:
		log.Error("unhandled service error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong.")
	}
}
