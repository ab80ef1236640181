package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes before encoding.
const (
	// TokenSize128 gives 128 bits of entropy, enough for short-lived
	// single-use tokens such as activation links.
	TokenSize128 = 16
	// TokenSize256 gives 256 bits of entropy. Used for MFA challenge
	// identifiers, which double as WebAuthn ceremony challenges.
	TokenSize256 = 32
)

// GenerateToken returns a cryptographically random token of size bytes,
// encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the SHA-256 fingerprint of a token as unpadded
// base64url. Stored in place of the token itself so a database dump never
// reveals usable secrets.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
