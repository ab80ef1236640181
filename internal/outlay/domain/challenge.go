package domain

import "time"

// MFA methods.
const (
	MethodTOTP    = "TOTP"
	MethodPasskey = "PASSKEY"
)

// Challenge purposes.
const (
	ChallengeForEnrollment = "enrollment"
	ChallengeForLogin      = "login"
)

// MaxChallengeAttempts is how many failed proofs a challenge survives
// before it is invalidated.
const MaxChallengeAttempts = 5

// Challenge is a pending MFA verification session. The ID is an opaque
// token; for passkey ceremonies it doubles as the base64url WebAuthn
// challenge, so the authenticator signs the same value the server looks
// the session up by.
type Challenge struct {
	ID          string
	UserID      string
	Purpose     string  // ChallengeForEnrollment or ChallengeForLogin
	Method      *string // bound MFA method, nil until selected
	PendingTOTP *string // enrollment only: secret awaiting first proof
	// WebAuthnSession holds the serialized ceremony state (JSON of
	// webauthn.SessionData) for passkey challenges.
	WebAuthnSession *string
	Attempts        int
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// Expired reports whether the challenge has passed its deadline.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
