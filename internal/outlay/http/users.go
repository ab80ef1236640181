package http

import (
	"net/http"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/service"
	"github.com/outlaydev/outlay/pkg/httpx"
	"github.com/outlaydev/outlay/pkg/outlaysdk"
	"github.com/outlaydev/outlay/pkg/slogx"
)

// UsersHandler serves account activation, login and profile endpoints.
type UsersHandler struct {
	UserService     *service.UserService
	WebAuthnService *service.WebAuthnService
}

// toSDKUser maps a domain user onto the wire shape. The password hash
// and TOTP secret never leave the service.
func toSDKUser(u domain.User, passkeys []domain.Passkey) outlaysdk.User {
	out := outlaysdk.User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		MFAVerified: u.MFAEnrolled(),
	}
	if u.MFAMethod != nil {
		out.MFAMethod = outlaysdk.MFAMethod(*u.MFAMethod)
	}
	for _, p := range passkeys {
		out.Passkeys = append(out.Passkeys, outlaysdk.PasskeyRef{ID: p.ID})
	}
	return out
}

// HandleSetupPassword handles POST /v1/users/setup-password
//
//	@Summary		Set the initial account password
//	@Description	Sets the password on an invited account, identified by an activation token or (while no password exists) the user ID.
//	@Description	On success an MFA enrollment challenge is opened; the account cannot log in until a method is verified.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		outlaysdk.SetupPasswordRequest	true	"Activation reference and password"
//	@Success		200		{object}	outlaysdk.SetupPasswordResponse	"Enrollment challenge"
//	@Failure		400		{object}	outlaysdk.ErrorResponse			"Invalid token or weak password"
//	@Failure		409		{object}	outlaysdk.ErrorResponse			"Account already activated"
//	@Router			/v1/users/setup-password [post].
func (h *UsersHandler) HandleSetupPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req outlaysdk.SetupPasswordRequest
	if !bindJSON(w, r, &req) {
		return
	}

	challengeID, err := h.UserService.SetupPassword(ctx, req.Token, req.UserID, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, outlaysdk.SetupPasswordResponse{
		Message:     "Password set. Choose a multi-factor method to finish activation.",
		ChallengeID: challengeID,
	})
}

// HandleLogin handles POST /v1/users/login
//
//	@Summary		Authenticate with email and password
//	@Description	Returns a session for accounts without MFA, or an MFA challenge for enrolled accounts.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		outlaysdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	outlaysdk.LoginResponse	"Session or MFA challenge"
//	@Failure		401		{object}	outlaysdk.ErrorResponse	"Invalid credentials"
//	@Router			/v1/users/login [post].
func (h *UsersHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req outlaysdk.LoginRequest
	if !bindJSON(w, r, &req) {
		return
	}

	outcome, err := h.UserService.Login(ctx, h.WebAuthnService, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	if outcome.MFARequired {
		httpx.WriteJSON(w, http.StatusOK, outlaysdk.LoginResponse{
			MFARequired: true,
			ChallengeID: outcome.ChallengeID,
			MFAMethod:   outcome.Method,
		})
		return
	}

	user := toSDKUser(outcome.User, nil)
	httpx.WriteJSON(w, http.StatusOK, outlaysdk.LoginResponse{
		User:  &user,
		Token: outcome.Token,
	})
}

// HandleMe handles GET /v1/users/me
//
//	@Summary		Current account
//	@Description	Returns the account record for the authenticated session, including passkey references.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	outlaysdk.User
//	@Failure		401	{object}	outlaysdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "invalid_token", "Missing authenticated user.")
		return
	}

	user, err := h.UserService.GetUser(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	passkeys, err := h.UserService.Store.Passkeys().ListUserPasskeys(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toSDKUser(user, passkeys))
}

// InviteRequest is the admin-only body for creating an account.
type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=member admin"`
}

// InviteResponse carries the one-time activation token.
type InviteResponse struct {
	User      outlaysdk.User `json:"user"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// HandleInvite handles POST /v1/users/invite
//
//	@Summary		Invite a user
//	@Description	Creates an inactive account and returns its one-time activation token. Admin only.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		InviteRequest	true	"New account"
//	@Success		201		{object}	InviteResponse	"Account and activation token (shown once)"
//	@Failure		409		{object}	outlaysdk.ErrorResponse	"Email already registered"
//	@Router			/v1/users/invite [post].
func (h *UsersHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "Missing authenticated user.")
		return
	}

	inviter, err := h.UserService.GetUser(ctx, claims.Subject)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	if inviter.Role != "admin" {
		writeError(w, http.StatusForbidden, "forbidden", "Only admins can invite users.")
		return
	}

	var req InviteRequest
	if !bindJSON(w, r, &req) {
		return
	}

	user, token, err := h.UserService.InviteUser(ctx, req.Email, req.Name, req.Role, inviter.ID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, InviteResponse{
		User:      toSDKUser(user, nil),
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(7 * 24 * time.Hour),
	})
}
