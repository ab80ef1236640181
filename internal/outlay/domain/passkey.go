package domain

import "time"

// Passkey is a registered WebAuthn credential. CredentialID and
// PublicKey are raw bytes; they are base64url encoded at the edges.
type Passkey struct {
	ID           string // ULID, client-visible reference
	UserID       string
	CredentialID []byte
	PublicKey    []byte
	AAGUID       []byte
	SignCount    uint32
	Transports   []string
	BackupState  bool
	CreatedAt    time.Time
	LastUsedAt   *time.Time
}
