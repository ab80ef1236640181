package domain

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	Role         string     // "member" or "admin"
	PasswordHash string     // argon2 encoded; empty until activation
	MFAMethod    *string    // "TOTP" or "PASSKEY" (nullable until enrolled)
	MFAEnabled   *time.Time // Timestamp when MFA enrollment completed (nullable)
	TOTPSecret   *string    // base32 encoded (nullable, only for TOTP accounts)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Activated reports whether the account has completed password setup.
func (u User) Activated() bool {
	return u.PasswordHash != ""
}

// MFAEnrolled reports whether the account has a verified second factor.
func (u User) MFAEnrolled() bool {
	return u.MFAEnabled != nil && u.MFAMethod != nil
}
