package domain

import "time"

// Expense statuses.
const (
	ExpenseStatusPending  = "pending"
	ExpenseStatusApproved = "approved"
	ExpenseStatusRejected = "rejected"
)

type Team struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeamMember links a user to a team. Role is "owner" or "member".
type TeamMember struct {
	TeamID   string
	UserID   string
	Role     string
	JoinedAt time.Time
}

type Category struct {
	ID            string
	TeamID        string
	Name          string
	MonthlyBudget int64 // cents, 0 means unbudgeted
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expense amounts are integer cents; currency is an ISO 4217 code.
type Expense struct {
	ID         string
	TeamID     string
	CategoryID string
	UserID     string
	Amount     int64
	Currency   string
	Note       string
	OccurredOn string // YYYY-MM-DD, date only
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SummaryLine is one (category, month) aggregation row of a report.
type SummaryLine struct {
	CategoryID   string
	CategoryName string
	Month        string // YYYY-MM
	Total        int64
	Count        int
}
