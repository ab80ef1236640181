package outlaysdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the Outlay API. It exposes the
// unauthenticated authentication endpoints directly and creates
// enrollment/login flows and authenticated API sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new Outlay API client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RelyingPartyID derives the WebAuthn relying party identifier from the
// client's base URL host, without the port.
func (c *SDKClient) RelyingPartyID() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Hostname() == "" {
		return c.BaseURL
	}
	return u.Hostname()
}

// NewEnrollmentFlow starts a fresh MFA enrollment for a newly activated
// account. The authenticator may be nil when only TOTP enrollment is
// offered; sessions receives the committed session on success.
func (c *SDKClient) NewEnrollmentFlow(authenticator Authenticator, sessions SessionStore) *EnrollmentFlow {
	return &EnrollmentFlow{
		client:        c,
		authenticator: authenticator,
		sessions:      sessions,
		state:         EnrollStateAwaitingPassword,
	}
}

// NewLoginFlow starts a fresh login attempt.
func (c *SDKClient) NewLoginFlow(authenticator Authenticator, sessions SessionStore) *LoginFlow {
	return &LoginFlow{
		client:        c,
		authenticator: authenticator,
		sessions:      sessions,
		state:         LoginStateIdle,
	}
}

// WithStore returns an authenticated API surface backed by the given
// session store. Calls fail with a ServerError(401) locally when the
// store holds no session.
func (c *SDKClient) WithStore(sessions SessionStore) *APISession {
	return &APISession{client: c, sessions: sessions}
}

// SetupPassword sets the initial password on an invited account and
// returns the enrollment challenge ID. Most callers should use
// EnrollmentFlow instead, which tracks state across the full ceremony.
func (c *SDKClient) SetupPassword(ctx context.Context, ref ActivationRef, password string) (*SetupPasswordResponse, error) {
	req := SetupPasswordRequest{
		Token:    ref.Token,
		UserID:   ref.UserID,
		Password: password,
	}

	var out SetupPasswordResponse
	if err := c.postJSON(ctx, "/v1/users/setup-password", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SelectMFAMethod binds an MFA method to an enrollment challenge and
// returns the per-method setup material.
func (c *SDKClient) SelectMFAMethod(ctx context.Context, challengeID string, method MFAMethod) (*SelectMethodResponse, error) {
	req := SelectMethodRequest{
		ChallengeID: challengeID,
		MFAMethod:   method,
	}

	var out SelectMethodResponse
	if err := c.postJSON(ctx, "/v1/users/select-mfa-method", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with email and password. When the account has MFA
// enrolled the response carries a challenge instead of a session.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := LoginRequest{Email: email, Password: password}

	var out LoginResponse
	if err := c.postJSON(ctx, "/v1/users/login", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
