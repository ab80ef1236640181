package outlay_test

import (
	"testing"
	"time"

	"github.com/outlaydev/outlay/pkg/outlaysdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies liveness and readiness against a running
// container.
func TestHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupOutlayContainer(t)
	defer cleanup()

	client := outlaysdk.NewSDKClient(baseURL)

	live, err := client.GetLiveness(t.Context())
	assertHealthy(t, live, err)

	ready, err := client.GetReadiness(t.Context())
	assertHealthy(t, ready, err)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
}

// TestTOTPEnrollmentAndLogin walks the full happy path: activate the
// bootstrap account, enroll TOTP, log out, then log back in with a
// password and a fresh code.
func TestTOTPEnrollmentAndLogin(t *testing.T) {
	baseURL, cleanup := setupOutlayContainer(t)
	defer cleanup()

	client := outlaysdk.NewSDKClient(baseURL)

	t.Logf("Step 1: Activating bootstrap account and enrolling TOTP")
	enrollStore, secret := activateAdmin(t, client)

	session := enrollStore.Current()
	require.NotNil(t, session)
	require.NotEmpty(t, session.Token)
	require.Equal(t, adminEmail, session.User.Email)
	require.Equal(t, outlaysdk.MethodTOTP, session.User.MFAMethod)
	require.True(t, session.User.MFAVerified)

	t.Logf("Step 2: Fetching own profile with the enrollment session")
	me, err := client.WithStore(enrollStore).Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, adminEmail, me.Email)
	require.Equal(t, "admin", me.Role)

	t.Logf("Step 3: Logging in again with password and a fresh code")
	loginStore := loginWithTOTP(t, client, adminEmail, adminPassword, secret)

	session = loginStore.Current()
	require.NotNil(t, session)
	require.Equal(t, adminEmail, session.User.Email)
	require.True(t, session.User.MFAVerified)
}

// TestLoginRejectsBadCredentials checks that a wrong password never
// produces a challenge.
func TestLoginRejectsBadCredentials(t *testing.T) {
	baseURL, cleanup := setupOutlayContainer(t)
	defer cleanup()

	client := outlaysdk.NewSDKClient(baseURL)
	activateAdmin(t, client)

	flow := client.NewLoginFlow(nil, outlaysdk.NewMemorySessionStore())
	_, err := flow.Login(t.Context(), adminEmail, "WrongPass1!")

	var serverErr *outlaysdk.ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, "invalid_credentials", serverErr.Code)
}

// TestLoginAttemptBudget submits wrong codes until the server consumes
// the challenge, then confirms the correct code is too late.
func TestLoginAttemptBudget(t *testing.T) {
	baseURL, cleanup := setupOutlayContainer(t)
	defer cleanup()

	client := outlaysdk.NewSDKClient(baseURL)
	_, secret := activateAdmin(t, client)

	flow := client.NewLoginFlow(nil, outlaysdk.NewMemorySessionStore())
	_, err := flow.Login(t.Context(), adminEmail, adminPassword)
	var mfaErr *outlaysdk.MFARequiredError
	require.ErrorAs(t, err, &mfaErr)

	t.Logf("Step 1: Burning through the attempt budget with wrong codes")
	for i := 0; i < 4; i++ {
		_, err = flow.VerifyTOTP(t.Context(), "000000")
		var verifyErr *outlaysdk.VerificationError
		require.ErrorAs(t, err, &verifyErr, "attempt %d should be retryable", i+1)
	}

	t.Logf("Step 2: Final wrong code consumes the challenge")
	_, err = flow.VerifyTOTP(t.Context(), "000000")
	var expiredErr *outlaysdk.ChallengeExpiredError
	require.ErrorAs(t, err, &expiredErr)

	t.Logf("Step 3: A fresh login challenge still works")
	freshFlow := client.NewLoginFlow(nil, outlaysdk.NewMemorySessionStore())
	_, err = freshFlow.Login(t.Context(), adminEmail, adminPassword)
	require.ErrorAs(t, err, &mfaErr)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	session, err := freshFlow.VerifyTOTP(t.Context(), code)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
}

// TestActivationTokenIsSingleUse confirms the bootstrap token cannot
// activate the account twice.
func TestActivationTokenIsSingleUse(t *testing.T) {
	baseURL, cleanup := setupOutlayContainer(t)
	defer cleanup()

	client := outlaysdk.NewSDKClient(baseURL)
	activateAdmin(t, client)

	flow := client.NewEnrollmentFlow(nil, outlaysdk.NewMemorySessionStore())
	_, err := flow.SubmitPassword(t.Context(), outlaysdk.ActivationRef{Token: bootstrapToken}, adminPassword)

	var serverErr *outlaysdk.ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, "invalid_token", serverErr.Code)
}
