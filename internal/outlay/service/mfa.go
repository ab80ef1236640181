package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/pkg/slogx"
)

var (
	ErrChallengeExpired  = errors.New("challenge expired or already used")
	ErrInvalidTOTPCode   = errors.New("invalid TOTP code")
	ErrInvalidCredential = errors.New("invalid passkey credential")
	ErrInvalidMethod     = errors.New("unknown MFA method")
	ErrMFANotEnrolled    = errors.New("no MFA method enrolled")
	ErrMissingProof      = errors.New("no proof supplied")
)

type MFAService struct {
	Store    store.Store
	WebAuthn *WebAuthnService
	Sessions *SessionIssuer
	Issuer   string // issuer name for TOTP provisioning (e.g. "Outlay")
}

// EnrollmentMaterial is what a method choice hands back to the client.
type EnrollmentMaterial struct {
	ChallengeID string          // possibly rotated
	Secret      string          // TOTP only
	OTPAuthURL  string          // TOTP only
	QRCode      string          // TOTP only, PNG data URL
	Options     json.RawMessage // passkey only
}

// AuthOutcome is a completed verification: the user plus a session token.
type AuthOutcome struct {
	User  domain.User
	Token string
}

// loadChallenge fetches a live challenge. Missing and expired rows both
// collapse into ErrChallengeExpired so replays learn nothing.
func (s *MFAService) loadChallenge(ctx context.Context, id, purpose string) (domain.Challenge, error) {
	ch, err := s.Store.Challenges().GetChallenge(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Challenge{}, ErrChallengeExpired
		}
		return domain.Challenge{}, err
	}
	if ch.Purpose != purpose {
		return domain.Challenge{}, ErrChallengeExpired
	}
	if ch.Expired(time.Now().UTC()) {
		_ = s.Store.Challenges().DeleteChallenge(ctx, id)
		return domain.Challenge{}, ErrChallengeExpired
	}
	return ch, nil
}

// failAttempt records a failed proof. When the budget runs out the
// challenge is consumed and further attempts see only expiry.
func (s *MFAService) failAttempt(ctx context.Context, id string, proofErr error) error {
	ch, err := s.Store.Challenges().IncrementChallengeAttempts(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrChallengeExpired
		}
		return err
	}
	if ch.Attempts >= domain.MaxChallengeAttempts {
		_ = s.Store.Challenges().DeleteChallenge(ctx, id)
		return ErrChallengeExpired
	}
	return proofErr
}

// SelectMethod binds an MFA method to an enrollment challenge and
// returns the setup material. Choosing a passkey rotates the challenge
// ID to the WebAuthn ceremony challenge.
func (s *MFAService) SelectMethod(ctx context.Context, challengeID, method string) (EnrollmentMaterial, error) {
	log := slogx.FromContext(ctx)

	ch, err := s.loadChallenge(ctx, challengeID, domain.ChallengeForEnrollment)
	if err != nil {
		return EnrollmentMaterial{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, ch.UserID)
	if err != nil {
		return EnrollmentMaterial{}, fmt.Errorf("failed to fetch user: %w", err)
	}

	switch method {
	case domain.MethodTOTP:
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      s.Issuer,
			AccountName: user.Email,
			Period:      30,
			Digits:      otp.DigitsSix,
			Algorithm:   otp.AlgorithmSHA1,
		})
		if err != nil {
			return EnrollmentMaterial{}, fmt.Errorf("failed to generate TOTP key: %w", err)
		}

		qr, err := qrDataURL(key)
		if err != nil {
			return EnrollmentMaterial{}, err
		}

		secret := key.Secret()
		ch.Method = &method
		ch.PendingTOTP = &secret
		ch.WebAuthnSession = nil
		if err := s.Store.Challenges().UpdateChallengeMethod(ctx, challengeID, ch); err != nil {
			return EnrollmentMaterial{}, err
		}

		log.Info("TOTP enrollment material issued", slog.String("user_id", user.ID))
		return EnrollmentMaterial{
			ChallengeID: ch.ID,
			Secret:      secret,
			OTPAuthURL:  key.URL(),
			QRCode:      qr,
		}, nil

	case domain.MethodPasskey:
		options, ceremonyID, session, err := s.WebAuthn.BeginRegistration(ctx, user.ID)
		if err != nil {
			return EnrollmentMaterial{}, err
		}

		ch.ID = ceremonyID
		ch.Method = &method
		ch.PendingTOTP = nil
		ch.WebAuthnSession = &session
		if err := s.Store.Challenges().UpdateChallengeMethod(ctx, challengeID, ch); err != nil {
			return EnrollmentMaterial{}, err
		}

		log.Info("passkey enrollment ceremony opened", slog.String("user_id", user.ID))
		return EnrollmentMaterial{
			ChallengeID: ch.ID,
			Options:     options,
		}, nil

	default:
		return EnrollmentMaterial{}, ErrInvalidMethod
	}
}

// VerifyEnrollment checks the first proof for the chosen method,
// activates MFA on the account, consumes the challenge and issues a
// session.
func (s *MFAService) VerifyEnrollment(ctx context.Context, challengeID, code string, credential json.RawMessage) (AuthOutcome, error) {
	log := slogx.FromContext(ctx)

	ch, err := s.loadChallenge(ctx, challengeID, domain.ChallengeForEnrollment)
	if err != nil {
		return AuthOutcome{}, err
	}
	if ch.Method == nil {
		return AuthOutcome{}, ErrInvalidMethod
	}

	var amr []string
	var newPasskey *domain.Passkey
	switch *ch.Method {
	case domain.MethodTOTP:
		if code == "" {
			return AuthOutcome{}, ErrMissingProof
		}
		if ch.PendingTOTP == nil || !totp.Validate(code, *ch.PendingTOTP) {
			return AuthOutcome{}, s.failAttempt(ctx, challengeID, ErrInvalidTOTPCode)
		}
		amr = []string{amrPassword, amrTOTP, amrMFA}

	case domain.MethodPasskey:
		if len(credential) == 0 {
			return AuthOutcome{}, ErrMissingProof
		}
		if ch.WebAuthnSession == nil {
			return AuthOutcome{}, ErrChallengeExpired
		}
		passkey, err := s.WebAuthn.FinishRegistration(ctx, ch.UserID, *ch.WebAuthnSession, credential)
		if err != nil {
			if errors.Is(err, ErrInvalidCredential) {
				return AuthOutcome{}, s.failAttempt(ctx, challengeID, ErrInvalidCredential)
			}
			return AuthOutcome{}, err
		}
		newPasskey = &passkey
		amr = []string{amrPassword, amrPasskey, amrMFA}

	default:
		return AuthOutcome{}, ErrInvalidMethod
	}

	if err := s.commitEnrollment(ctx, ch, newPasskey); err != nil {
		return AuthOutcome{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, ch.UserID)
	if err != nil {
		return AuthOutcome{}, err
	}
	token, err := s.Sessions.Issue(user, amr, true)
	if err != nil {
		return AuthOutcome{}, err
	}

	log.Info("MFA enrollment verified",
		slog.String("user_id", user.ID),
		slog.String("method", *ch.Method),
	)
	return AuthOutcome{User: user, Token: token}, nil
}

// commitEnrollment lands the verified enrollment atomically: the new
// credential (passkeys only), the account's MFA method and the consumed
// challenge all commit or none do. A failure leaves the challenge live
// and no credential row behind, so the client can simply retry.
func (s *MFAService) commitEnrollment(ctx context.Context, ch domain.Challenge, passkey *domain.Passkey) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if passkey != nil {
			if err := tx.Passkeys().CreatePasskey(ctx, *passkey); err != nil {
				return err
			}
		}
		if err := tx.Users().SetMFA(ctx, ch.UserID, *ch.Method, ch.PendingTOTP); err != nil {
			return err
		}
		return tx.Challenges().DeleteChallenge(ctx, ch.ID)
	})
}

// VerifyLogin checks a login proof against the pending challenge,
// consumes it and issues a fully verified session.
func (s *MFAService) VerifyLogin(ctx context.Context, challengeID, totpCode string, credential json.RawMessage) (AuthOutcome, error) {
	log := slogx.FromContext(ctx)

	ch, err := s.loadChallenge(ctx, challengeID, domain.ChallengeForLogin)
	if err != nil {
		return AuthOutcome{}, err
	}
	if ch.Method == nil {
		return AuthOutcome{}, ErrInvalidMethod
	}

	user, err := s.Store.Users().GetUserByID(ctx, ch.UserID)
	if err != nil {
		return AuthOutcome{}, err
	}

	var amr []string
	switch *ch.Method {
	case domain.MethodTOTP:
		if totpCode == "" {
			return AuthOutcome{}, ErrMissingProof
		}
		if user.TOTPSecret == nil || !totp.Validate(totpCode, *user.TOTPSecret) {
			return AuthOutcome{}, s.failAttempt(ctx, challengeID, ErrInvalidTOTPCode)
		}
		amr = []string{amrPassword, amrTOTP, amrMFA}

	case domain.MethodPasskey:
		if len(credential) == 0 {
			return AuthOutcome{}, ErrMissingProof
		}
		if ch.WebAuthnSession == nil {
			return AuthOutcome{}, ErrChallengeExpired
		}
		if err := s.WebAuthn.FinishLogin(ctx, ch.UserID, *ch.WebAuthnSession, credential); err != nil {
			if errors.Is(err, ErrInvalidCredential) {
				return AuthOutcome{}, s.failAttempt(ctx, challengeID, ErrInvalidCredential)
			}
			return AuthOutcome{}, err
		}
		amr = []string{amrPassword, amrPasskey, amrMFA}

	default:
		return AuthOutcome{}, ErrInvalidMethod
	}

	// Consume before issuing: a challenge never survives a success.
	if err := s.Store.Challenges().DeleteChallenge(ctx, challengeID); err != nil {
		return AuthOutcome{}, err
	}

	token, err := s.Sessions.Issue(user, amr, true)
	if err != nil {
		return AuthOutcome{}, err
	}

	log.Info("login verified",
		slog.String("user_id", user.ID),
		slog.String("method", *ch.Method),
	)
	return AuthOutcome{User: user, Token: token}, nil
}

// qrDataURL renders a provisioning key as a PNG data URL so clients can
// drop it straight into an image tag.
func qrDataURL(key *otp.Key) (string, error) {
	img, err := key.Image(200, 200)
	if err != nil {
		return "", fmt.Errorf("failed to render QR image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode QR image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
