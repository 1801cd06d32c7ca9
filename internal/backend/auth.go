package backend

import (
	"context"
	"net/http"

	"github.com/procureflow/procureflow/internal/shared"
)

// LoginResult is the backend's response to a successful login.
type LoginResult struct {
	Token   string         `json:"token"`
	Profile shared.Profile `json:"profile"`
}

// Login exchanges credentials for a role-scoped bearer token. Credentials
// are forwarded, never stored.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, "", http.MethodPost, "/auth/login", body, &result)
	return result, err
}

// Logout invalidates the bearer token upstream. Best effort; the session is
// destroyed locally regardless.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, token, http.MethodPost, "/auth/logout", nil, nil)
}

// FetchProfile re-reads the actor's profile, including the current month's
// spend figures.
func (c *Client) FetchProfile(ctx context.Context, token string) (shared.Profile, error) {
	var profile shared.Profile
	err := c.do(ctx, token, http.MethodGet, "/auth/me", nil, &profile)
	return profile, err
}
