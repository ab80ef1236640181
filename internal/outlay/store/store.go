package store

import (
	"context"
	"errors"

	"github.com/outlaydev/outlay/internal/outlay/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. Sub-repositories keep concerns tidy and testable, and
// stop multi-step operations from accidentally nesting transactions.
type Store interface {
	Users() Users
	Invites() Invites
	Challenges() Challenges
	Passkeys() Passkeys
	Teams() Teams
	Categories() Categories
	Expenses() Expenses

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. An error from fn rolls
	// back; nil commits. This is the recommended entry point.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login; email matching is
	// case-insensitive.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// SetMFA binds the verified method to the account: writes mfa_method,
	// sets mfa_enabled to now, and stores the TOTP secret when present.
	SetMFA(ctx context.Context, userID string, method string, totpSecret *string) error

	// ClearMFA removes the second factor (admin recovery path).
	ClearMFA(ctx context.Context, userID string) error

	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Invites interface {
	// CreateInvite writes a new invite (token_hash is the SHA-256
	// fingerprint of the opaque invite token).
	CreateInvite(ctx context.Context, inv domain.Invite) error

	// GetActiveInviteByTokenHash returns a not-used, not-expired invite.
	GetActiveInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// MarkInviteUsed sets used=1 and bumps updated_at.
	MarkInviteUsed(ctx context.Context, inviteID string) error

	DeleteExpiredInvites(ctx context.Context) error
}

type Challenges interface {
	// CreateChallenge creates a pending MFA verification session.
	CreateChallenge(ctx context.Context, c domain.Challenge) error

	// GetChallenge retrieves a challenge by ID regardless of expiry; the
	// service layer decides how to report expiration.
	GetChallenge(ctx context.Context, id string) (domain.Challenge, error)

	// UpdateChallengeMethod binds a method and its pending material. A
	// new ID may replace the old one when the method rotates the
	// challenge into a WebAuthn ceremony.
	UpdateChallengeMethod(ctx context.Context, oldID string, c domain.Challenge) error

	// IncrementChallengeAttempts bumps the failed attempt counter and
	// returns the updated row.
	IncrementChallengeAttempts(ctx context.Context, id string) (domain.Challenge, error)

	// DeleteChallenge consumes a challenge. Deleting a missing row is
	// not an error; callers treat absence as expiry.
	DeleteChallenge(ctx context.Context, id string) error

	DeleteExpiredChallenges(ctx context.Context) error
}

type Passkeys interface {
	CreatePasskey(ctx context.Context, p domain.Passkey) error

	GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (domain.Passkey, error)

	// ListUserPasskeys returns all credentials for a user, oldest first.
	ListUserPasskeys(ctx context.Context, userID string) ([]domain.Passkey, error)

	// UpdatePasskeySignCount stores the post-assertion counter and
	// last_used_at.
	UpdatePasskeySignCount(ctx context.Context, id string, signCount uint32) error

	DeletePasskey(ctx context.Context, id string) error
}

type Teams interface {
	CreateTeam(ctx context.Context, t domain.Team) error
	GetTeamByID(ctx context.Context, id string) (domain.Team, error)
	ListUserTeams(ctx context.Context, userID string) ([]domain.Team, error)

	// AddMember inserts a membership row; duplicate membership maps to
	// ErrAlreadyExists.
	AddMember(ctx context.Context, m domain.TeamMember) error
	GetMember(ctx context.Context, teamID, userID string) (domain.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, userID string) error
}

type Categories interface {
	CreateCategory(ctx context.Context, c domain.Category) error
	GetCategoryByID(ctx context.Context, id string) (domain.Category, error)
	ListTeamCategories(ctx context.Context, teamID string) ([]domain.Category, error)
	UpdateCategoryBudget(ctx context.Context, id string, monthlyBudget int64) error
	DeleteCategory(ctx context.Context, id string) error
}

type Expenses interface {
	CreateExpense(ctx context.Context, e domain.Expense) error
	GetExpenseByID(ctx context.Context, id string) (domain.Expense, error)

	// ListTeamExpenses returns a team's expenses, newest occurred_on first.
	ListTeamExpenses(ctx context.Context, teamID string, limit, offset int) ([]domain.Expense, error)

	UpdateExpenseStatus(ctx context.Context, id string, status string) error
	DeleteExpense(ctx context.Context, id string) error

	// SummarizeTeamExpenses aggregates approved and pending expenses per
	// category per month over an inclusive occurred_on range.
	SummarizeTeamExpenses(ctx context.Context, teamID, from, to string) ([]domain.SummaryLine, error)
}
