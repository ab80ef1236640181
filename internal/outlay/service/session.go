package service

import (
	"fmt"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/pkg/jwtx"
)

// AMR values recorded on issued sessions.
const (
	amrPassword = "pwd"
	amrTOTP     = "otp"
	amrPasskey  = "swk"
	amrMFA      = "mfa"
)

// SessionIssuer mints bearer tokens for authenticated users.
type SessionIssuer struct {
	Signer *jwtx.Signer
	Issuer string
	TTL    time.Duration
}

// Issue signs a session token for the user. amr records how the user
// authenticated; mfaVerified gates the MFA-protected API surface.
func (i *SessionIssuer) Issue(user domain.User, amr []string, mfaVerified bool) (string, error) {
	ttl := i.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(user.ID, user.Email, user.Name, amr, mfaVerified, i.Issuer, ttl, time.Now())

	token, err := i.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}
