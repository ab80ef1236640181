package outlaysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// APISession is the authenticated API surface. It reads the bearer token
// from its SessionStore on every call, so a session committed by a flow
// becomes usable immediately and a cleared store fails closed.
type APISession struct {
	client   *SDKClient
	sessions SessionStore
}

// errNotAuthenticated is what every call returns when the store is empty.
func errNotAuthenticated() error {
	return &ServerError{StatusCode: http.StatusUnauthorized, Code: "not_authenticated", Message: "no session is active"}
}

// Logout clears the stored session. The server keeps no session state
// beyond token expiry, so this is purely a local operation.
func (s *APISession) Logout() error {
	return s.sessions.Commit(nil)
}

// Me fetches the account record for the current session.
func (s *APISession) Me(ctx context.Context) (*User, error) {
	var out User
	if err := s.doJSON(ctx, http.MethodGet, "/v1/users/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTeam creates a team owned by the current user.
func (s *APISession) CreateTeam(ctx context.Context, name string) (*Team, error) {
	var out Team
	req := CreateTeamRequest{Name: name}
	if err := s.doJSON(ctx, http.MethodPost, "/v1/teams", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTeams lists the teams the current user belongs to.
func (s *APISession) ListTeams(ctx context.Context) ([]Team, error) {
	var out ListTeamsResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/teams", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Teams, nil
}

// CreateCategory creates an expense category inside a team.
func (s *APISession) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	var out Category
	if err := s.doJSON(ctx, http.MethodPost, "/v1/categories", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategories lists the categories of one team.
func (s *APISession) ListCategories(ctx context.Context, teamID string) ([]Category, error) {
	path := "/v1/categories?teamId=" + url.QueryEscape(teamID)
	var out ListCategoriesResponse
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// CreateExpense records an expense against a category.
func (s *APISession) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*Expense, error) {
	var out Expense
	if err := s.doJSON(ctx, http.MethodPost, "/v1/expenses", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListExpenses lists a team's expenses, newest first.
func (s *APISession) ListExpenses(ctx context.Context, teamID string) ([]Expense, error) {
	path := "/v1/expenses?teamId=" + url.QueryEscape(teamID)
	var out ListExpensesResponse
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Expenses, nil
}

// Summary fetches the per-category monthly spending report for a team
// over an inclusive YYYY-MM-DD date range.
func (s *APISession) Summary(ctx context.Context, teamID, from, to string) (*SummaryResponse, error) {
	q := url.Values{}
	q.Set("teamId", teamID)
	q.Set("from", from)
	q.Set("to", to)

	var out SummaryResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/reports/summary?"+q.Encode(), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// doJSON performs an authenticated JSON round trip.
func (s *APISession) doJSON(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	current := s.sessions.Current()
	if current == nil {
		return errNotAuthenticated()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+current.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeJSON(resp, target, expectedStatus)
}
