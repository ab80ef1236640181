package outlaysdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EnrollmentState is the position of an EnrollmentFlow in its ceremony.
type EnrollmentState int

const (
	EnrollStateAwaitingPassword EnrollmentState = iota
	EnrollStateAwaitingMethodChoice
	EnrollStateAwaitingTOTPProof
	EnrollStateAwaitingPasskeyRegistration
	EnrollStateVerified
	EnrollStateFailed
)

func (s EnrollmentState) String() string {
	switch s {
	case EnrollStateAwaitingPassword:
		return "awaiting_password"
	case EnrollStateAwaitingMethodChoice:
		return "awaiting_method_choice"
	case EnrollStateAwaitingTOTPProof:
		return "awaiting_totp_proof"
	case EnrollStateAwaitingPasskeyRegistration:
		return "awaiting_passkey_registration"
	case EnrollStateVerified:
		return "verified"
	case EnrollStateFailed:
		return "failed"
	default:
		return fmt.Sprintf("EnrollmentState(%d)", int(s))
	}
}

// EnrollmentFlow walks a newly invited account through password setup
// and mandatory MFA enrollment. States only move forward; a terminal
// failure requires a new flow. All methods are safe for concurrent use,
// with at most one verification request in flight at a time.
type EnrollmentFlow struct {
	client        *SDKClient
	authenticator Authenticator
	sessions      SessionStore

	mu        sync.Mutex
	state     EnrollmentState
	challenge Challenge
	material  *EnrollmentMaterial
	inFlight  bool
}

// State reports the current position. UIs key their screens off it.
func (f *EnrollmentFlow) State() EnrollmentState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Challenge returns the active challenge, zero-valued before the
// password step completes.
func (f *EnrollmentFlow) Challenge() Challenge {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.challenge
}

// SubmitPassword validates the candidate password locally, sets it on
// the account, and advances to the method choice. A ValidationError
// leaves the flow where it is so the user can correct the input.
func (f *EnrollmentFlow) SubmitPassword(ctx context.Context, ref ActivationRef, password string) (Challenge, error) {
	f.mu.Lock()
	if f.state != EnrollStateAwaitingPassword {
		defer f.mu.Unlock()
		return Challenge{}, fmt.Errorf("outlaysdk: cannot submit password in state %s", f.state)
	}
	f.mu.Unlock()

	if ref.Token == "" && ref.UserID == "" {
		return Challenge{}, &ValidationError{Problems: []string{"an activation token or user id is required"}}
	}
	if err := ValidatePassword(password); err != nil {
		return Challenge{}, err
	}

	resp, err := f.client.SetupPassword(ctx, ref, password)
	if err != nil {
		f.recordOutcome(err)
		return Challenge{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.challenge = Challenge{ID: resp.ChallengeID, CreatedFor: "enrollment"}
	f.state = EnrollStateAwaitingMethodChoice
	return f.challenge, nil
}

// ChooseMethod binds the chosen MFA method to the challenge and returns
// the setup material: TOTP secret with provisioning URI and QR code, or
// passkey creation options. Choosing a passkey method without an
// authenticator fails before any request is made.
func (f *EnrollmentFlow) ChooseMethod(ctx context.Context, method MFAMethod) (*EnrollmentMaterial, error) {
	f.mu.Lock()
	if f.state != EnrollStateAwaitingMethodChoice {
		defer f.mu.Unlock()
		return nil, fmt.Errorf("outlaysdk: cannot choose a method in state %s", f.state)
	}
	challengeID := f.challenge.ID
	f.mu.Unlock()

	if method != MethodTOTP && method != MethodPasskey {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("unknown MFA method %q", method)}}
	}
	if method == MethodPasskey && f.authenticator == nil {
		return nil, ErrAuthenticatorUnsupported
	}

	resp, err := f.client.SelectMFAMethod(ctx, challengeID, method)
	if err != nil {
		f.recordOutcome(err)
		return nil, err
	}

	material := &EnrollmentMaterial{
		Secret:          resp.Secret,
		OTPAuthURL:      resp.OTPAuthURL,
		QRCode:          resp.QRCode,
		CreationOptions: resp.Options,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// The server may rotate the challenge when the method binds it to a
	// WebAuthn ceremony.
	if resp.ChallengeID != "" {
		f.challenge.ID = resp.ChallengeID
	}
	f.challenge.Method = method
	f.material = material
	if method == MethodPasskey {
		f.state = EnrollStateAwaitingPasskeyRegistration
	} else {
		f.state = EnrollStateAwaitingTOTPProof
	}
	return material, nil
}

// SubmitTOTPProof verifies the first code from the authenticator app and
// completes enrollment. A VerificationError keeps the flow live for a
// retry; a ChallengeExpiredError is terminal.
func (f *EnrollmentFlow) SubmitTOTPProof(ctx context.Context, code string) (*Session, error) {
	if err := f.beginAttempt(EnrollStateAwaitingTOTPProof); err != nil {
		return nil, err
	}
	defer f.endAttempt()

	if err := validateTOTPCode(code); err != nil {
		return nil, err
	}

	result, err := f.client.submitProof(ctx, purposeEnrollment, f.Challenge().ID, TOTPProof{Code: code})
	if err != nil {
		f.recordOutcome(err)
		return nil, err
	}
	return f.complete(result)
}

// RegisterPasskey runs the registration ceremony against the
// authenticator and submits the attestation. Authenticator refusals
// leave the flow live; the user may retry or abandon.
func (f *EnrollmentFlow) RegisterPasskey(ctx context.Context) (*Session, error) {
	if err := f.beginAttempt(EnrollStateAwaitingPasskeyRegistration); err != nil {
		return nil, err
	}
	defer f.endAttempt()

	f.mu.Lock()
	options := f.material.CreationOptions
	challengeID := f.challenge.ID
	f.mu.Unlock()

	credential, err := f.authenticator.Create(ctx, options)
	if err != nil {
		return nil, err
	}

	result, err := f.client.submitProof(ctx, purposeEnrollment, challengeID, PasskeyProof{Credential: credential})
	if err != nil {
		f.recordOutcome(err)
		return nil, err
	}
	return f.complete(result)
}

// complete commits the session and moves to the verified terminal state.
// A store failure is terminal: the server-side session exists but the
// client could not keep it, so the user must log in again.
func (f *EnrollmentFlow) complete(result *AuthResult) (*Session, error) {
	session := &Session{Token: result.Token, User: result.User}
	if err := f.sessions.Commit(session); err != nil {
		f.mu.Lock()
		f.state = EnrollStateFailed
		f.mu.Unlock()
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	f.mu.Lock()
	f.state = EnrollStateVerified
	f.mu.Unlock()
	return session, nil
}

// recordOutcome moves to the failed terminal state when the challenge is
// gone. Verification rejections and transient failures stay live so the
// user can retry against the same challenge.
func (f *EnrollmentFlow) recordOutcome(err error) {
	var expired *ChallengeExpiredError
	if !errors.As(err, &expired) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = EnrollStateFailed
}

func (f *EnrollmentFlow) beginAttempt(want EnrollmentState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != want {
		return fmt.Errorf("outlaysdk: no verification pending in state %s", f.state)
	}
	if f.inFlight {
		return ErrVerificationInProgress
	}
	f.inFlight = true
	return nil
}

func (f *EnrollmentFlow) endAttempt() {
	f.mu.Lock()
	f.inFlight = false
	f.mu.Unlock()
}
