// Package jwtx signs and verifies the EdDSA bearer tokens Outlay issues
// after a completed authentication (password plus verified MFA proof).
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of an issued session token. The
// server is authoritative on validity; clients never refresh on their own.
const DefaultSessionTTL = 12 * time.Hour

// Claims are the session-token claims shared by the service and the SDK.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user.
	Email string `json:"email,omitempty"`

	// Name is the user's display name.
	Name string `json:"name,omitempty"`

	// AMR lists the authentication methods used for this session:
	//   "pwd"  password
	//   "otp"  TOTP code
	//   "swk"  passkey (software/hardware authenticator)
	//   "mfa"  more than one factor was verified
	AMR []string `json:"amr,omitempty"`

	// MFAVerified is true once the user has completed MFA enrollment.
	MFAVerified bool `json:"mfa_verified,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a fresh session.
func NewSessionClaims(subject, email, name string, amr []string, mfaVerified bool, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		Email:       email,
		Name:        name,
		AMR:         amr,
		MFAVerified: mfaVerified,
	}
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token is inside its [nbf, exp] window.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// ValidateIssuer checks the issuer when one is expected.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}
