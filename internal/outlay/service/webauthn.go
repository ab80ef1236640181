package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/pkg/idx"
)

// WebAuthnService wraps the relying-party ceremonies. The ceremony
// session state lives on the challenge row, serialized as JSON, so the
// challenge ID the client holds is the same base64url value the
// authenticator ends up signing.
type WebAuthnService struct {
	Store store.Store
	RP    *webauthn.WebAuthn
}

// NewRelyingParty builds the go-webauthn instance for this deployment.
func NewRelyingParty(displayName, rpID string, origins []string) (*webauthn.WebAuthn, error) {
	return webauthn.New(&webauthn.Config{
		RPDisplayName: displayName,
		RPID:          rpID,
		RPOrigins:     origins,
		AuthenticatorSelection: protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationPreferred,
		},
		Timeouts: webauthn.TimeoutsConfig{
			Login: webauthn.TimeoutConfig{
				Enforce: true,
				Timeout: 60 * time.Second,
			},
			Registration: webauthn.TimeoutConfig{
				Enforce: true,
				Timeout: 60 * time.Second,
			},
		},
	})
}

// webauthnUser adapts a domain.User (plus its stored passkeys) to the
// webauthn.User interface.
type webauthnUser struct {
	user     domain.User
	passkeys []domain.Passkey
}

var _ webauthn.User = (*webauthnUser)(nil)

func (u *webauthnUser) WebAuthnID() []byte          { return []byte(u.user.ID) }
func (u *webauthnUser) WebAuthnName() string        { return u.user.Email }
func (u *webauthnUser) WebAuthnDisplayName() string { return u.user.Name }

func (u *webauthnUser) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, 0, len(u.passkeys))
	for _, p := range u.passkeys {
		transports := make([]protocol.AuthenticatorTransport, 0, len(p.Transports))
		for _, t := range p.Transports {
			transports = append(transports, protocol.AuthenticatorTransport(t))
		}
		creds = append(creds, webauthn.Credential{
			ID:        p.CredentialID,
			PublicKey: p.PublicKey,
			Transport: transports,
			Flags: webauthn.CredentialFlags{
				BackupState: p.BackupState,
			},
			Authenticator: webauthn.Authenticator{
				AAGUID:    p.AAGUID,
				SignCount: p.SignCount,
			},
		})
	}
	return creds
}

func (s *WebAuthnService) loadUser(ctx context.Context, userID string) (*webauthnUser, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	passkeys, err := s.Store.Passkeys().ListUserPasskeys(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list passkeys: %w", err)
	}
	return &webauthnUser{user: user, passkeys: passkeys}, nil
}

// BeginRegistration starts a registration ceremony. It returns the
// creation options to pass to the client verbatim, the ceremony
// challenge (base64url, used as the new challenge ID), and the
// serialized session state to persist alongside it.
func (s *WebAuthnService) BeginRegistration(ctx context.Context, userID string) (json.RawMessage, string, string, error) {
	wu, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, "", "", err
	}

	creation, sessionData, err := s.RP.BeginRegistration(wu)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to begin registration: %w", err)
	}

	options, err := json.Marshal(creation)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to encode creation options: %w", err)
	}
	session, err := json.Marshal(sessionData)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to encode ceremony session: %w", err)
	}

	return options, sessionData.Challenge, string(session), nil
}

// FinishRegistration validates an attestation against the stored
// ceremony session and returns the passkey to persist. The caller
// commits it together with the rest of the enrollment state so a
// failed enrollment leaves no credential behind.
func (s *WebAuthnService) FinishRegistration(ctx context.Context, userID, sessionJSON string, credential json.RawMessage) (domain.Passkey, error) {
	wu, err := s.loadUser(ctx, userID)
	if err != nil {
		return domain.Passkey{}, err
	}

	var sessionData webauthn.SessionData
	if err := json.Unmarshal([]byte(sessionJSON), &sessionData); err != nil {
		return domain.Passkey{}, fmt.Errorf("failed to decode ceremony session: %w", err)
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(credential))
	if err != nil {
		return domain.Passkey{}, ErrInvalidCredential
	}

	cred, err := s.RP.CreateCredential(wu, sessionData, parsed)
	if err != nil {
		return domain.Passkey{}, ErrInvalidCredential
	}

	transports := make([]string, 0, len(cred.Transport))
	for _, t := range cred.Transport {
		transports = append(transports, string(t))
	}

	return domain.Passkey{
		ID:           idx.New().String(),
		UserID:       userID,
		CredentialID: cred.ID,
		PublicKey:    cred.PublicKey,
		AAGUID:       cred.Authenticator.AAGUID,
		SignCount:    cred.Authenticator.SignCount,
		Transports:   transports,
		BackupState:  cred.Flags.BackupState,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// BeginLogin starts an assertion ceremony for a user with registered
// passkeys. As with registration, the ceremony challenge becomes the
// challenge ID.
func (s *WebAuthnService) BeginLogin(ctx context.Context, userID string) (string, string, error) {
	wu, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", "", err
	}
	if len(wu.passkeys) == 0 {
		return "", "", ErrMFANotEnrolled
	}

	_, sessionData, err := s.RP.BeginLogin(wu)
	if err != nil {
		return "", "", fmt.Errorf("failed to begin login ceremony: %w", err)
	}

	session, err := json.Marshal(sessionData)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode ceremony session: %w", err)
	}
	return sessionData.Challenge, string(session), nil
}

// FinishLogin validates an assertion and bumps the credential's sign
// counter.
func (s *WebAuthnService) FinishLogin(ctx context.Context, userID, sessionJSON string, credential json.RawMessage) error {
	wu, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	var sessionData webauthn.SessionData
	if err := json.Unmarshal([]byte(sessionJSON), &sessionData); err != nil {
		return fmt.Errorf("failed to decode ceremony session: %w", err)
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(credential))
	if err != nil {
		return ErrInvalidCredential
	}

	cred, err := s.RP.ValidateLogin(wu, sessionData, parsed)
	if err != nil {
		return ErrInvalidCredential
	}

	// Find the matching row to persist the new counter. A miss here is
	// unreachable as ValidateLogin already matched against the list.
	for _, p := range wu.passkeys {
		if bytes.Equal(p.CredentialID, cred.ID) {
			if err := s.Store.Passkeys().UpdatePasskeySignCount(ctx, p.ID, cred.Authenticator.SignCount); err != nil {
				return fmt.Errorf("failed to update sign count: %w", err)
			}
			break
		}
	}
	return nil
}
