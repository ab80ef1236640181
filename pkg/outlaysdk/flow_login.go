package outlaysdk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/outlaydev/outlay/pkg/b64url"
)

// LoginState is the position of a LoginFlow.
type LoginState int

const (
	LoginStateIdle LoginState = iota
	LoginStateAwaitingMFA
	LoginStateAuthenticated
	LoginStateFailed
)

func (s LoginState) String() string {
	switch s {
	case LoginStateIdle:
		return "idle"
	case LoginStateAwaitingMFA:
		return "awaiting_mfa"
	case LoginStateAuthenticated:
		return "authenticated"
	case LoginStateFailed:
		return "failed"
	default:
		return fmt.Sprintf("LoginState(%d)", int(s))
	}
}

// MFARequiredError is returned by Login when the account has a second
// factor enrolled. It carries everything the caller needs to route to
// the matching verification step.
type MFARequiredError struct {
	ChallengeID string
	Method      MFAMethod
}

func (e *MFARequiredError) Error() string {
	return fmt.Sprintf("outlaysdk: multi-factor verification required (method %s)", e.Method)
}

// LoginFlow authenticates an existing user, including the second factor
// when one is enrolled. At most one verification request may be in
// flight; a concurrent attempt fails synchronously with
// ErrVerificationInProgress and does not disturb the pending one.
type LoginFlow struct {
	client        *SDKClient
	authenticator Authenticator
	sessions      SessionStore

	mu        sync.Mutex
	state     LoginState
	challenge Challenge
	inFlight  bool
}

func (f *LoginFlow) State() LoginState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Login authenticates with email and password. Accounts without MFA get
// a committed session straight back. Accounts with MFA get an
// *MFARequiredError and the flow moves to the verification step.
func (f *LoginFlow) Login(ctx context.Context, email, password string) (*Session, error) {
	f.mu.Lock()
	if f.state != LoginStateIdle {
		defer f.mu.Unlock()
		return nil, fmt.Errorf("outlaysdk: cannot log in in state %s", f.state)
	}
	f.mu.Unlock()

	resp, err := f.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if resp.MFARequired || resp.ChallengeID != "" {
		method := MFAMethod(resp.MFAMethod)
		f.mu.Lock()
		f.challenge = Challenge{ID: resp.ChallengeID, Method: method, CreatedFor: "login"}
		f.state = LoginStateAwaitingMFA
		f.mu.Unlock()
		return nil, &MFARequiredError{ChallengeID: resp.ChallengeID, Method: method}
	}

	if resp.User == nil || resp.Token == "" {
		return nil, &ServerError{StatusCode: 200, Message: "login response carried no session"}
	}
	return f.complete(&AuthResult{Token: resp.Token, User: *resp.User})
}

// Challenge returns the pending MFA challenge, zero-valued outside the
// verification step.
func (f *LoginFlow) Challenge() Challenge {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.challenge
}

// VerifyTOTP submits an authenticator app code against the pending
// challenge. Wrong codes keep the challenge live until the server gives
// up on it; then a ChallengeExpiredError ends the flow.
func (f *LoginFlow) VerifyTOTP(ctx context.Context, code string) (*Session, error) {
	if err := f.beginAttempt(); err != nil {
		return nil, err
	}
	defer f.endAttempt()

	if err := validateTOTPCode(code); err != nil {
		return nil, err
	}

	result, err := f.client.submitProof(ctx, purposeLogin, f.Challenge().ID, TOTPProof{Code: code})
	if err != nil {
		f.recordOutcome(err)
		return nil, err
	}
	return f.complete(result)
}

// VerifyPasskey runs an assertion ceremony against the authenticator and
// submits the result. The challenge ID itself is the base64url ceremony
// challenge; it is decoded locally before the authenticator sees it.
func (f *LoginFlow) VerifyPasskey(ctx context.Context) (*Session, error) {
	if f.authenticator == nil {
		return nil, ErrAuthenticatorUnsupported
	}
	if err := f.beginAttempt(); err != nil {
		return nil, err
	}
	defer f.endAttempt()

	challengeID := f.Challenge().ID
	raw, err := b64url.Decode(challengeID)
	if err != nil {
		return nil, &EncodingError{Field: "challengeId", Err: err}
	}

	credential, err := f.authenticator.Get(ctx, AssertionOptions{
		Challenge:        raw,
		RelyingPartyID:   f.client.RelyingPartyID(),
		Timeout:          defaultCeremonyTimeout,
		UserVerification: "preferred",
	})
	if err != nil {
		return nil, err
	}

	result, err := f.client.submitProof(ctx, purposeLogin, challengeID, PasskeyProof{Credential: credential})
	if err != nil {
		f.recordOutcome(err)
		return nil, err
	}
	return f.complete(result)
}

func (f *LoginFlow) complete(result *AuthResult) (*Session, error) {
	session := &Session{Token: result.Token, User: result.User}
	if err := f.sessions.Commit(session); err != nil {
		f.mu.Lock()
		f.state = LoginStateFailed
		f.mu.Unlock()
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	f.mu.Lock()
	f.state = LoginStateAuthenticated
	f.mu.Unlock()
	return session, nil
}

func (f *LoginFlow) recordOutcome(err error) {
	var expired *ChallengeExpiredError
	if !errors.As(err, &expired) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = LoginStateFailed
}

func (f *LoginFlow) beginAttempt() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != LoginStateAwaitingMFA {
		return fmt.Errorf("outlaysdk: no verification pending in state %s", f.state)
	}
	if f.inFlight {
		return ErrVerificationInProgress
	}
	f.inFlight = true
	return nil
}

func (f *LoginFlow) endAttempt() {
	f.mu.Lock()
	f.inFlight = false
	f.mu.Unlock()
}
