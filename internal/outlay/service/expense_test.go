package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/pkg/idx"
	"github.com/stretchr/testify/require"
)

type expenseFixture struct {
	store      store.Store
	teams      *TeamService
	categories *CategoryService
	expenses   *ExpenseService
	reports    *ReportService

	owner  string
	member string
}

func newExpenseFixture(t *testing.T) *expenseFixture {
	t.Helper()

	st := newTestStore(t)
	teams := &TeamService{Store: st}

	return &expenseFixture{
		store:      st,
		teams:      teams,
		categories: &CategoryService{Store: st, Teams: teams},
		expenses:   &ExpenseService{Store: st, Teams: teams},
		reports:    &ReportService{Store: st, Teams: teams},
		owner:      seedUser(t, st, "owner@example.com"),
		member:     seedUser(t, st, "member@example.com"),
	}
}

func seedUser(t *testing.T, st store.Store, email string) string {
	t.Helper()

	user := domain.User{
		ID:    idx.New().String(),
		Email: email,
		Name:  email,
		Role:  "member",
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user.ID
}

func (f *expenseFixture) newTeam(t *testing.T) domain.Team {
	t.Helper()
	ctx := context.Background()

	team, err := f.teams.CreateTeam(ctx, "Engineering", f.owner)
	require.NoError(t, err)
	require.NoError(t, f.teams.AddMember(ctx, team.ID, f.member, f.owner))
	return team
}

func TestCreateTeamMakesCreatorOwner(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)

	team, err := f.teams.CreateTeam(ctx, "Finance", f.owner)
	require.NoError(t, err)

	member, err := f.store.Teams().GetMember(ctx, team.ID, f.owner)
	require.NoError(t, err)
	require.Equal(t, "owner", member.Role)

	teams, err := f.teams.ListTeams(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	require.Equal(t, "Finance", teams[0].Name)
}

func TestAddMemberRequiresOwner(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	team := f.newTeam(t)

	outsider := seedUser(t, f.store, "outsider@example.com")

	t.Run("members cannot add members", func(t *testing.T) {
		err := f.teams.AddMember(ctx, team.ID, outsider, f.member)
		require.ErrorIs(t, err, ErrNotTeamOwner)
	})

	t.Run("non-members are rejected outright", func(t *testing.T) {
		err := f.teams.AddMember(ctx, team.ID, outsider, outsider)
		require.ErrorIs(t, err, ErrNotTeamMember)
	})

	t.Run("duplicate membership rejected", func(t *testing.T) {
		err := f.teams.AddMember(ctx, team.ID, f.member, f.owner)
		require.ErrorIs(t, err, ErrAlreadyMember)
	})
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	team := f.newTeam(t)

	category, err := f.categories.CreateCategory(ctx, team.ID, "Travel", 150_000, f.owner)
	require.NoError(t, err)
	require.Equal(t, int64(150_000), category.MonthlyBudget)

	t.Run("duplicate name in team rejected", func(t *testing.T) {
		_, err := f.categories.CreateCategory(ctx, team.ID, "Travel", 0, f.owner)
		require.ErrorIs(t, err, ErrCategoryTaken)
	})

	t.Run("members can list", func(t *testing.T) {
		categories, err := f.categories.ListCategories(ctx, team.ID, f.member)
		require.NoError(t, err)
		require.Len(t, categories, 1)
	})

	t.Run("budget updates are owner-only", func(t *testing.T) {
		err := f.categories.UpdateBudget(ctx, category.ID, 200_000, f.member)
		require.ErrorIs(t, err, ErrNotTeamOwner)

		require.NoError(t, f.categories.UpdateBudget(ctx, category.ID, 200_000, f.owner))
	})
}

func TestExpenseLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	team := f.newTeam(t)

	category, err := f.categories.CreateCategory(ctx, team.ID, "Meals", 0, f.owner)
	require.NoError(t, err)

	expense, err := f.expenses.CreateExpense(ctx, domain.Expense{
		TeamID:     team.ID,
		CategoryID: category.ID,
		UserID:     f.member,
		Amount:     2350,
		Currency:   "AUD",
		Note:       "team lunch",
		OccurredOn: "2026-08-12",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ExpenseStatusPending, expense.Status)

	t.Run("zero amounts rejected", func(t *testing.T) {
		_, err := f.expenses.CreateExpense(ctx, domain.Expense{
			TeamID: team.ID, CategoryID: category.ID, UserID: f.member,
			Amount: 0, Currency: "AUD", OccurredOn: "2026-08-12",
		})
		require.ErrorIs(t, err, ErrInvalidExpense)
	})

	t.Run("bad dates rejected", func(t *testing.T) {
		_, err := f.expenses.CreateExpense(ctx, domain.Expense{
			TeamID: team.ID, CategoryID: category.ID, UserID: f.member,
			Amount: 100, Currency: "AUD", OccurredOn: "2026-02-30",
		})
		require.ErrorIs(t, err, ErrInvalidExpense)
	})

	t.Run("category must belong to the team", func(t *testing.T) {
		other, err := f.teams.CreateTeam(ctx, "Other", f.owner)
		require.NoError(t, err)
		otherCategory, err := f.categories.CreateCategory(ctx, other.ID, "Misc", 0, f.owner)
		require.NoError(t, err)

		_, err = f.expenses.CreateExpense(ctx, domain.Expense{
			TeamID: team.ID, CategoryID: otherCategory.ID, UserID: f.member,
			Amount: 100, Currency: "AUD", OccurredOn: "2026-08-12",
		})
		require.ErrorIs(t, err, ErrCategoryMismatch)
	})

	t.Run("members cannot approve", func(t *testing.T) {
		_, err := f.expenses.SetStatus(ctx, expense.ID, domain.ExpenseStatusApproved, f.member)
		require.ErrorIs(t, err, ErrNotTeamOwner)
	})

	approved, err := f.expenses.SetStatus(ctx, expense.ID, domain.ExpenseStatusApproved, f.owner)
	require.NoError(t, err)
	require.Equal(t, domain.ExpenseStatusApproved, approved.Status)

	t.Run("approval is one way", func(t *testing.T) {
		_, err := f.expenses.SetStatus(ctx, expense.ID, domain.ExpenseStatusRejected, f.owner)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("only approved or rejected are valid targets", func(t *testing.T) {
		_, err := f.expenses.SetStatus(ctx, expense.ID, "archived", f.owner)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestListExpensesPaging(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	team := f.newTeam(t)

	category, err := f.categories.CreateCategory(ctx, team.ID, "Supplies", 0, f.owner)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := f.expenses.CreateExpense(ctx, domain.Expense{
			TeamID: team.ID, CategoryID: category.ID, UserID: f.member,
			Amount: int64(100 + i), Currency: "AUD",
			OccurredOn: fmt.Sprintf("2026-08-%02d", i+1),
		})
		require.NoError(t, err)
	}

	page, err := f.expenses.ListExpenses(ctx, team.ID, f.member, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)

	rest, err := f.expenses.ListExpenses(ctx, team.ID, f.member, 100, 2)
	require.NoError(t, err)
	require.Len(t, rest, 3)

	t.Run("non-members cannot list", func(t *testing.T) {
		outsider := seedUser(t, f.store, "stranger@example.com")
		_, err := f.expenses.ListExpenses(ctx, team.ID, outsider, 10, 0)
		require.ErrorIs(t, err, ErrNotTeamMember)
	})
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	team := f.newTeam(t)

	travel, err := f.categories.CreateCategory(ctx, team.ID, "Travel", 0, f.owner)
	require.NoError(t, err)
	meals, err := f.categories.CreateCategory(ctx, team.ID, "Meals", 0, f.owner)
	require.NoError(t, err)

	add := func(categoryID, day string, amount int64) domain.Expense {
		e, err := f.expenses.CreateExpense(ctx, domain.Expense{
			TeamID: team.ID, CategoryID: categoryID, UserID: f.member,
			Amount: amount, Currency: "AUD", OccurredOn: day,
		})
		require.NoError(t, err)
		return e
	}

	add(travel.ID, "2026-07-03", 50_000)
	add(travel.ID, "2026-07-21", 30_000)
	add(meals.ID, "2026-07-10", 4_000)
	rejected := add(meals.ID, "2026-07-11", 9_999)
	add(travel.ID, "2026-08-02", 20_000)

	_, err = f.expenses.SetStatus(ctx, rejected.ID, domain.ExpenseStatusRejected, f.owner)
	require.NoError(t, err)

	summary, err := f.reports.Summarize(ctx, team.ID, "2026-07-01", "2026-08-31", f.member)
	require.NoError(t, err)
	require.Equal(t, int64(104_000), summary.Total)
	require.Len(t, summary.Lines, 3)

	byKey := map[string]domain.SummaryLine{}
	for _, line := range summary.Lines {
		byKey[line.CategoryName+"/"+line.Month] = line
	}
	require.Equal(t, int64(80_000), byKey["Travel/2026-07"].Total)
	require.Equal(t, 2, byKey["Travel/2026-07"].Count)
	require.Equal(t, int64(4_000), byKey["Meals/2026-07"].Total)
	require.Equal(t, int64(20_000), byKey["Travel/2026-08"].Total)

	t.Run("range excludes outside months", func(t *testing.T) {
		july, err := f.reports.Summarize(ctx, team.ID, "2026-07-01", "2026-07-31", f.member)
		require.NoError(t, err)
		require.Equal(t, int64(84_000), july.Total)
	})

	t.Run("inverted and malformed ranges rejected", func(t *testing.T) {
		_, err := f.reports.Summarize(ctx, team.ID, "2026-08-01", "2026-07-01", f.member)
		require.ErrorIs(t, err, ErrInvalidDateRange)

		_, err = f.reports.Summarize(ctx, team.ID, "yesterday", "2026-07-01", f.member)
		require.ErrorIs(t, err, ErrInvalidDateRange)
	})
}
