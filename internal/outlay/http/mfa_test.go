package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/service"
	"github.com/outlaydev/outlay/internal/outlay/store/drivers/sqlite"
	"github.com/outlaydev/outlay/pkg/cryptox"
	"github.com/outlaydev/outlay/pkg/jwtx"
	"github.com/outlaydev/outlay/pkg/outlaysdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func newMFAHandler(t *testing.T) (*MFAHandler, *service.UserService) {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSigner("test-key")
	require.NoError(t, err)
	sessions := &service.SessionIssuer{Signer: signer, Issuer: "outlay-test", TTL: time.Minute}

	users := &service.UserService{Store: st, Sessions: sessions}
	mfa := &service.MFAService{Store: st, Sessions: sessions, Issuer: "Outlay Test"}
	return &MFAHandler{MFAService: mfa}, users
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// enrollToVerify walks a fresh user to the point where a TOTP proof is
// the only missing step, returning the challenge and its secret.
func enrollToVerify(t *testing.T, users *service.UserService, mfa *service.MFAService, email string) (string, string) {
	t.Helper()
	ctx := context.Background()

	_, token, err := users.InviteUser(ctx, email, "Test User", "", "admin-1")
	require.NoError(t, err)

	challengeID, err := users.SetupPassword(ctx, token, "", "Ab1@yz")
	require.NoError(t, err)

	material, err := mfa.SelectMethod(ctx, challengeID, domain.MethodTOTP)
	require.NoError(t, err)
	return challengeID, material.Secret
}

func TestHandleVerifySetupReturnsAuthResult(t *testing.T) {
	h, users := newMFAHandler(t)
	challengeID, secret := enrollToVerify(t, users, h.MFAService, "nia@example.com")

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	rec := postJSON(t, h.HandleVerifySetup, "/v1/users/verify-mfa-setup", VerifySetupRequest{
		ChallengeID: challengeID,
		Code:        code,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result outlaysdk.AuthResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.NotEmpty(t, result.Token)
	require.Equal(t, "nia@example.com", result.User.Email)
	require.Equal(t, outlaysdk.MethodTOTP, result.User.MFAMethod)
	require.True(t, result.User.MFAVerified)
}

func TestHandleVerifyLoginReturnsAuthResult(t *testing.T) {
	ctx := context.Background()
	h, users := newMFAHandler(t)
	challengeID, secret := enrollToVerify(t, users, h.MFAService, "ola@example.com")

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	_, err = h.MFAService.VerifyEnrollment(ctx, challengeID, code, nil)
	require.NoError(t, err)

	outcome, err := users.Login(ctx, nil, "ola@example.com", "Ab1@yz")
	require.NoError(t, err)
	require.True(t, outcome.MFARequired)

	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	rec := postJSON(t, h.HandleVerifyLogin, "/v1/users/verify-login-mfa", VerifyLoginRequest{
		ChallengeID: outcome.ChallengeID,
		TOTPCode:    code,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result outlaysdk.AuthResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.NotEmpty(t, result.Token)
	require.Equal(t, "ola@example.com", result.User.Email)
	require.True(t, result.User.MFAVerified)

	t.Run("replayed challenge is gone", func(t *testing.T) {
		rec := postJSON(t, h.HandleVerifyLogin, "/v1/users/verify-login-mfa", VerifyLoginRequest{
			ChallengeID: outcome.ChallengeID,
			TOTPCode:    code,
		})
		require.Equal(t, http.StatusGone, rec.Code)

		var er outlaysdk.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&er))
		require.Equal(t, "challenge_expired", er.Error)
	})
}
