package outlaysdk

import (
	"encoding/json"
	"time"
)

// MFAMethod identifies the second factor a user enrolls with.
type MFAMethod string

const (
	MethodTOTP    MFAMethod = "TOTP"
	MethodPasskey MFAMethod = "PASSKEY"
)

// User is the account record returned by authentication endpoints.
type User struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	Name        string       `json:"name"`
	Role        string       `json:"role,omitempty"`
	MFAMethod   MFAMethod    `json:"mfaMethod,omitempty"`
	MFAVerified bool         `json:"mfaVerified"`
	Passkeys    []PasskeyRef `json:"passkeys,omitempty"`
}

// PasskeyRef is the client-visible reference to a registered passkey.
// The list only ever grows from the client's perspective.
type PasskeyRef struct {
	ID string `json:"id"`
}

// Challenge binds one verification attempt to one enrollment or login
// session. The ID doubles as the base64url WebAuthn ceremony challenge
// for passkey flows. A flow holds at most one active challenge.
type Challenge struct {
	ID         string    `json:"challengeId"`
	Method     MFAMethod `json:"method,omitempty"`
	CreatedFor string    `json:"createdFor"` // "enrollment" or "login"
}

// EnrollmentMaterial is what the server hands back after a method choice.
// TOTP material is never persisted client-side; abandoning enrollment
// before verifying means the server issues fresh material next time.
type EnrollmentMaterial struct {
	// TOTP
	Secret     string `json:"secret,omitempty"`     // base32 shared secret, shown as text
	OTPAuthURL string `json:"otpAuthUrl,omitempty"` // otpauth:// provisioning URI
	QRCode     string `json:"qrCode,omitempty"`     // PNG data URL of the same URI

	// Passkey: registration options passed verbatim to the authenticator.
	CreationOptions json.RawMessage `json:"options,omitempty"`
}

// CredentialDescriptor is the JSON form of a credential produced by an
// authenticator. Binary members are base64url text; raw bytes are never
// stored or transmitted.
type CredentialDescriptor struct {
	ID       string                `json:"id"`
	RawID    string                `json:"rawId"`
	Type     string                `json:"type"` // always "public-key"
	Response AuthenticatorResponse `json:"response"`
}

// AuthenticatorResponse carries either an attestation (registration) or
// an assertion (login); unused members stay empty.
type AuthenticatorResponse struct {
	ClientDataJSON    string `json:"clientDataJSON"`
	AttestationObject string `json:"attestationObject,omitempty"`
	AuthenticatorData string `json:"authenticatorData,omitempty"`
	Signature         string `json:"signature,omitempty"`
	UserHandle        string `json:"userHandle,omitempty"`
}

// ActivationRef identifies the account completing password setup: either
// a one-time activation token from an invite email, or the user ID while
// the account still has no password.
type ActivationRef struct {
	Token  string `json:"token,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// ============================================================================
// Wire request/response bodies
// ============================================================================

type SetupPasswordRequest struct {
	Token    string `json:"token,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Password string `json:"password" validate:"required,min=6"`
}

type SetupPasswordResponse struct {
	Message     string `json:"message"`
	ChallengeID string `json:"challengeId"`
}

type SelectMethodRequest struct {
	ChallengeID string    `json:"challengeId" validate:"required"`
	MFAMethod   MFAMethod `json:"mfaMethod" validate:"required,oneof=TOTP PASSKEY"`
}

type SelectMethodResponse struct {
	Message     string          `json:"message"`
	ChallengeID string          `json:"challengeId"`
	Secret      string          `json:"secret,omitempty"`
	QRCode      string          `json:"qrCode,omitempty"`
	OTPAuthURL  string          `json:"otpAuthUrl,omitempty"`
	Options     json.RawMessage `json:"options,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse either carries a complete session (user+token) or an MFA
// challenge (challengeId + mfa_method). The mixed field casing is the
// wire contract and is kept as-is.
type LoginResponse struct {
	User        *User  `json:"user,omitempty"`
	Token       string `json:"token,omitempty"`
	ChallengeID string `json:"challengeId,omitempty"`
	MFAMethod   string `json:"mfa_method,omitempty"`
	MFARequired bool   `json:"mfaRequired,omitempty"`
}

// AuthResult is the shared verification response for both enrollment and
// login endpoints.
type AuthResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// ErrorResponse is the structured error body the API returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ============================================================================
// Expense domain types consumed by the authenticated API surface
// ============================================================================

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type Category struct {
	ID            string    `json:"id"`
	TeamID        string    `json:"teamId"`
	Name          string    `json:"name"`
	MonthlyBudget int64     `json:"monthlyBudget"` // cents; 0 means no budget
	CreatedAt     time.Time `json:"createdAt"`
}

type Expense struct {
	ID         string    `json:"id"`
	TeamID     string    `json:"teamId"`
	CategoryID string    `json:"categoryId"`
	UserID     string    `json:"userId"`
	Amount     int64     `json:"amount"` // cents
	Currency   string    `json:"currency"`
	Note       string    `json:"note,omitempty"`
	OccurredOn string    `json:"occurredOn"` // YYYY-MM-DD
	Status     string    `json:"status"`     // pending, approved, rejected
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateTeamRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}

type CreateCategoryRequest struct {
	TeamID        string `json:"teamId" validate:"required"`
	Name          string `json:"name" validate:"required,min=1,max=80"`
	MonthlyBudget int64  `json:"monthlyBudget,omitempty" validate:"gte=0"`
}

type CreateExpenseRequest struct {
	TeamID     string `json:"teamId" validate:"required"`
	CategoryID string `json:"categoryId" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Currency   string `json:"currency" validate:"required,len=3"`
	Note       string `json:"note,omitempty" validate:"max=500"`
	OccurredOn string `json:"occurredOn" validate:"required,datetime=2006-01-02"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type ListCategoriesResponse struct {
	Categories []Category `json:"categories"`
}

type ListTeamsResponse struct {
	Teams []Team `json:"teams"`
}

// SummaryLine is one aggregation row in a spending report.
type SummaryLine struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Month        string `json:"month"` // YYYY-MM
	Total        int64  `json:"total"` // cents
	Count        int    `json:"count"`
}

type SummaryResponse struct {
	TeamID string        `json:"teamId"`
	From   string        `json:"from"`
	To     string        `json:"to"`
	Lines  []SummaryLine `json:"lines"`
	Total  int64         `json:"total"`
}
