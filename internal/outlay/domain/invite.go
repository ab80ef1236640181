package domain

import "time"

// Invite is a pending account activation. The opaque token travels in
// the invite email; only its SHA-256 fingerprint is stored.
type Invite struct {
	ID        string
	TokenHash string
	UserID    string // account the invite activates
	CreatedBy string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
