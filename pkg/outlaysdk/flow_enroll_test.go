package outlaysdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enrollmentBackend fakes the server side of the enrollment ceremony:
// one invite token, one challenge, one acceptable TOTP code, single-use
// semantics on the challenge.
type enrollmentBackend struct {
	mu          sync.Mutex
	inviteToken string
	challengeID string
	acceptCode  string
	consumed    bool
	method      MFAMethod
}

func newEnrollmentServer(t *testing.T, backend *enrollmentBackend) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	writeErr := func(w http.ResponseWriter, status int, code, message string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ErrorResponse{Error: code, Message: message})
	}

	mux.HandleFunc("POST /v1/users/setup-password", func(w http.ResponseWriter, r *http.Request) {
		var req SetupPasswordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Token != backend.inviteToken {
			writeErr(w, http.StatusBadRequest, "invalid_token", "activation token is not valid")
			return
		}
		json.NewEncoder(w).Encode(SetupPasswordResponse{
			Message:     "password set, choose an MFA method",
			ChallengeID: backend.challengeID,
		})
	})

	mux.HandleFunc("POST /v1/users/select-mfa-method", func(w http.ResponseWriter, r *http.Request) {
		var req SelectMethodRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.ChallengeID != backend.challengeID {
			writeErr(w, http.StatusGone, "challenge_expired", "challenge expired or already used")
			return
		}
		backend.mu.Lock()
		backend.method = req.MFAMethod
		backend.mu.Unlock()
		json.NewEncoder(w).Encode(SelectMethodResponse{
			ChallengeID: backend.challengeID,
			Secret:      "JBSWY3DPEHPK3PXP",
			OTPAuthURL:  "otpauth://totp/Outlay:casey@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Outlay",
			QRCode:      "data:image/png;base64,iVBOR",
		})
	})

	mux.HandleFunc("POST /v1/users/verify-mfa-setup", func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		backend.mu.Lock()
		defer backend.mu.Unlock()
		if req.ChallengeID != backend.challengeID || backend.consumed {
			writeErr(w, http.StatusGone, "challenge_expired", "challenge expired or already used")
			return
		}
		if req.Code != backend.acceptCode {
			writeErr(w, http.StatusUnauthorized, "invalid_code", "The code you entered was not accepted.")
			return
		}
		backend.consumed = true
		json.NewEncoder(w).Encode(AuthResult{
			Message: "MFA enrollment complete",
			Token:   "session-token-1",
			User: User{
				ID:          "user-1",
				Email:       "casey@example.com",
				Name:        "Casey",
				MFAMethod:   MethodTOTP,
				MFAVerified: true,
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// Happy path: activate, enroll TOTP, verify the first code, land with a
// committed session.
func TestEnrollmentFlowTOTPEndToEnd(t *testing.T) {
	backend := &enrollmentBackend{
		inviteToken: "invite-tok",
		challengeID: "chal-1",
		acceptCode:  "123456",
	}
	srv := newEnrollmentServer(t, backend)

	store := NewMemorySessionStore()
	flow := NewSDKClient(srv.URL).NewEnrollmentFlow(nil, store)
	require.Equal(t, EnrollStateAwaitingPassword, flow.State())

	challenge, err := flow.SubmitPassword(context.Background(), ActivationRef{Token: "invite-tok"}, "Ab1@yz")
	require.NoError(t, err)
	assert.Equal(t, "chal-1", challenge.ID)
	assert.Equal(t, "enrollment", challenge.CreatedFor)
	require.Equal(t, EnrollStateAwaitingMethodChoice, flow.State())

	material, err := flow.ChooseMethod(context.Background(), MethodTOTP)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", material.Secret)
	assert.NotEmpty(t, material.OTPAuthURL)
	assert.NotEmpty(t, material.QRCode)
	require.Equal(t, EnrollStateAwaitingTOTPProof, flow.State())

	session, err := flow.SubmitTOTPProof(context.Background(), "123456")
	require.NoError(t, err)
	require.Equal(t, EnrollStateVerified, flow.State())
	assert.Equal(t, "session-token-1", session.Token)
	assert.True(t, session.User.MFAVerified)

	// The flow committed the session into the store atomically.
	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "session-token-1", current.Token)
	assert.Equal(t, "casey@example.com", current.User.Email)
}

func TestEnrollmentFlowRejectsWeakPasswordLocally(t *testing.T) {
	backend := &enrollmentBackend{inviteToken: "invite-tok", challengeID: "chal-1", acceptCode: "123456"}
	srv := newEnrollmentServer(t, backend)

	flow := NewSDKClient(srv.URL).NewEnrollmentFlow(nil, NewMemorySessionStore())

	_, err := flow.SubmitPassword(context.Background(), ActivationRef{Token: "invite-tok"}, "abcdef")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	// Recoverable: the flow stays put and a corrected password works.
	require.Equal(t, EnrollStateAwaitingPassword, flow.State())
	_, err = flow.SubmitPassword(context.Background(), ActivationRef{Token: "invite-tok"}, "Ab1@yz")
	require.NoError(t, err)
}

func TestEnrollmentFlowWrongCodeIsRetryable(t *testing.T) {
	backend := &enrollmentBackend{inviteToken: "invite-tok", challengeID: "chal-1", acceptCode: "123456"}
	srv := newEnrollmentServer(t, backend)

	store := NewMemorySessionStore()
	flow := NewSDKClient(srv.URL).NewEnrollmentFlow(nil, store)
	_, err := flow.SubmitPassword(context.Background(), ActivationRef{Token: "invite-tok"}, "Ab1@yz")
	require.NoError(t, err)
	_, err = flow.ChooseMethod(context.Background(), MethodTOTP)
	require.NoError(t, err)

	_, err = flow.SubmitTOTPProof(context.Background(), "000000")
	var verification *VerificationError
	require.ErrorAs(t, err, &verification)
	require.Equal(t, EnrollStateAwaitingTOTPProof, flow.State())
	assert.Nil(t, store.Current())

	_, err = flow.SubmitTOTPProof(context.Background(), "123456")
	require.NoError(t, err)
	require.Equal(t, EnrollStateVerified, flow.State())
}

// Challenge reuse: a consumed challenge answers only with
// ChallengeExpiredError, regardless of proof validity.
func TestEnrollmentFlowChallengeIsSingleUse(t *testing.T) {
	backend := &enrollmentBackend{inviteToken: "invite-tok", challengeID: "chal-1", acceptCode: "123456"}
	srv := newEnrollmentServer(t, backend)

	client := NewSDKClient(srv.URL)
	flow := client.NewEnrollmentFlow(nil, NewMemorySessionStore())
	_, err := flow.SubmitPassword(context.Background(), ActivationRef{Token: "invite-tok"}, "Ab1@yz")
	require.NoError(t, err)
	_, err = flow.ChooseMethod(context.Background(), MethodTOTP)
	require.NoError(t, err)
	_, err = flow.SubmitTOTPProof(context.Background(), "123456")
	require.NoError(t, err)

	// Replay the same challenge with a valid proof directly.
	_, err = client.submitProof(context.Background(), purposeEnrollment, "chal-1", TOTPProof{Code: "123456"})
	var expired *ChallengeExpiredError
	require.ErrorAs(t, err, &expired)
}

func TestEnrollmentFlowPasskeyWithoutAuthenticator(t *testing.T) {
	backend := &enrollmentBackend{inviteToken: "invite-tok", challengeID: "chal-1", acceptCode: "123456"}
	srv := newEnrollmentServer(t, backend)

	flow := NewSDKClient(srv.URL).NewEnrollmentFlow(nil, NewMemorySessionStore())
	_, err := flow.SubmitPassword(context.Background(), ActivationRef{Token: "invite-tok"}, "Ab1@yz")
	require.NoError(t, err)

	_, err = flow.ChooseMethod(context.Background(), MethodPasskey)
	require.ErrorIs(t, err, ErrAuthenticatorUnsupported)
	assert.Equal(t, "This device does not support passkeys.", UserMessage(err))

	// Nothing was sent, so the method choice is still open.
	require.Equal(t, EnrollStateAwaitingMethodChoice, flow.State())
}

func TestEnrollmentFlowOutOfOrderCalls(t *testing.T) {
	backend := &enrollmentBackend{inviteToken: "invite-tok", challengeID: "chal-1", acceptCode: "123456"}
	srv := newEnrollmentServer(t, backend)

	flow := NewSDKClient(srv.URL).NewEnrollmentFlow(nil, NewMemorySessionStore())

	_, err := flow.ChooseMethod(context.Background(), MethodTOTP)
	require.Error(t, err)

	_, err = flow.SubmitTOTPProof(context.Background(), "123456")
	require.Error(t, err)
}
