package http

import (
	"encoding/json"
	"net/http"

	"github.com/outlaydev/outlay/internal/outlay/service"
	"github.com/outlaydev/outlay/pkg/httpx"
	"github.com/outlaydev/outlay/pkg/outlaysdk"
	"github.com/outlaydev/outlay/pkg/slogx"
)

// MFAHandler serves MFA enrollment and login verification endpoints.
type MFAHandler struct {
	MFAService *service.MFAService
}

// VerifySetupRequest is the wire body for verify-mfa-setup. Exactly one
// proof member is set per request; the service rejects the rest.
type VerifySetupRequest struct {
	ChallengeID string          `json:"challengeId" validate:"required"`
	Code        string          `json:"code,omitempty"`
	Credential  json.RawMessage `json:"credential,omitempty"`
}

// VerifyLoginRequest is the wire body for verify-login-mfa. Login names
// the TOTP field totpCode where enrollment uses code.
type VerifyLoginRequest struct {
	ChallengeID string          `json:"challengeId" validate:"required"`
	TOTPCode    string          `json:"totpCode,omitempty"`
	Credential  json.RawMessage `json:"credential,omitempty"`
}

// HandleSelectMethod handles POST /v1/users/select-mfa-method
//
//	@Summary		Choose an MFA method for enrollment
//	@Description	Binds TOTP or PASSKEY to an open enrollment challenge and returns the material
//	@Description	needed to produce a proof (shared secret and QR code, or WebAuthn creation options).
//	@Description	The challenge ID may rotate; clients must use the returned ID from here on.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		outlaysdk.SelectMethodRequest	true	"Challenge and method"
//	@Success		200		{object}	outlaysdk.SelectMethodResponse	"Enrollment material"
//	@Failure		400		{object}	outlaysdk.ErrorResponse			"Unknown method"
//	@Failure		410		{object}	outlaysdk.ErrorResponse			"Challenge expired or consumed"
//	@Router			/v1/users/select-mfa-method [post].
func (h *MFAHandler) HandleSelectMethod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req outlaysdk.SelectMethodRequest
	if !bindJSON(w, r, &req) {
		return
	}

	material, err := h.MFAService.SelectMethod(ctx, req.ChallengeID, string(req.MFAMethod))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, outlaysdk.SelectMethodResponse{
		Message:     "Method selected. Submit a proof to finish enrollment.",
		ChallengeID: material.ChallengeID,
		Secret:      material.Secret,
		OTPAuthURL:  material.OTPAuthURL,
		QRCode:      material.QRCode,
		Options:     material.Options,
	})
}

// HandleVerifySetup handles POST /v1/users/verify-mfa-setup
//
//	@Summary		Prove the chosen MFA method
//	@Description	Consumes the enrollment challenge with a TOTP code or a registered passkey
//	@Description	credential. On success the account is activated and a session is issued.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		VerifySetupRequest		true	"Challenge and proof"
//	@Success		200		{object}	outlaysdk.AuthResult	"Activated session"
//	@Failure		401		{object}	outlaysdk.ErrorResponse	"Proof rejected"
//	@Failure		410		{object}	outlaysdk.ErrorResponse	"Challenge expired or consumed"
//	@Router			/v1/users/verify-mfa-setup [post].
func (h *MFAHandler) HandleVerifySetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req VerifySetupRequest
	if !bindJSON(w, r, &req) {
		return
	}

	outcome, err := h.MFAService.VerifyEnrollment(ctx, req.ChallengeID, req.Code, req.Credential)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, outlaysdk.AuthResult{
		Message: "Multi-factor authentication enabled.",
		Token:   outcome.Token,
		User:    toSDKUser(outcome.User, nil),
	})
}

// HandleVerifyLogin handles POST /v1/users/verify-login-mfa
//
//	@Summary		Complete a login with an MFA proof
//	@Description	Consumes the login challenge with a TOTP code or a passkey assertion and
//	@Description	returns the full session. Challenges are single use.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		VerifyLoginRequest		true	"Challenge and proof"
//	@Success		200		{object}	outlaysdk.AuthResult	"Authenticated session"
//	@Failure		401		{object}	outlaysdk.ErrorResponse	"Proof rejected"
//	@Failure		410		{object}	outlaysdk.ErrorResponse	"Challenge expired or consumed"
//	@Router			/v1/users/verify-login-mfa [post].
func (h *MFAHandler) HandleVerifyLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req VerifyLoginRequest
	if !bindJSON(w, r, &req) {
		return
	}

	outcome, err := h.MFAService.VerifyLogin(ctx, req.ChallengeID, req.TOTPCode, req.Credential)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, outlaysdk.AuthResult{
		Message: "Login verified.",
		Token:   outcome.Token,
		User:    toSDKUser(outcome.User, nil),
	})
}
