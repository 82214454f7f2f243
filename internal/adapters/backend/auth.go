package backend

import (
	"context"
	"net/http"

	"edtclient/internal/domain"
)

// Login exchanges credentials for a bearer token and the user record.
// The token is returned, not stored; the auth session owns persistence.
func (c *Client) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	body := map[string]string{"username": username, "password": password}
	var payload struct {
		OK    bool        `json:"ok"`
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, body, &payload); err != nil {
		return "", nil, err
	}
	return payload.Token, &payload.User, nil
}

// Me returns the identity behind the current token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var payload struct {
		OK   bool        `json:"ok"`
		User domain.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, nil, &payload); err != nil {
		return nil, err
	}
	return &payload.User, nil
}

// ChangePassword updates the caller's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	body := map[string]string{
		"oldPassword":     oldPassword,
		"newPassword":     newPassword,
		"confirmPassword": confirm,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/change-password", nil, body, nil)
}
