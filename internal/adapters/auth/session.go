package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"edtclient/internal/domain"
)

// API is the slice of the backend the auth session needs.
type API interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Me(ctx context.Context) (*domain.User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error
}

// Session implements domain.AuthSession over the backend auth
// endpoints and a token holder. Any unauthorized response tears the
// session down: the stored token is cleared and the caller must log in
// again.
type Session struct {
	api    API
	holder *Holder
	logger *slog.Logger
}

// NewSession wires the auth session.
func NewSession(api API, holder *Holder, logger *slog.Logger) *Session {
	return &Session{api: api, holder: holder, logger: logger}
}

// Login authenticates and adopts the returned token.
func (s *Session) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	token, user, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.holder.Set(token); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", "user", user.ID, "role", user.Role)
	return user, nil
}

// Me returns the identity behind the held token, logging the session
// out when the backend no longer accepts it.
func (s *Session) Me(ctx context.Context) (*domain.User, error) {
	if !s.Authenticated() {
		return nil, domain.ErrNotLoggedIn
	}
	user, err := s.api.Me(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.teardown()
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword updates the password after the same confirm-equality
// precheck the backend applies.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	if oldPassword == "" || newPassword == "" || confirm == "" {
		return fmt.Errorf("all password fields are required")
	}
	if newPassword != confirm {
		return fmt.Errorf("password confirmation does not match")
	}
	err := s.api.ChangePassword(ctx, oldPassword, newPassword, confirm)
	if err != nil && errors.Is(err, domain.ErrUnauthorized) {
		s.teardown()
	}
	return err
}

// Logout clears the held token.
func (s *Session) Logout() error {
	s.logger.Info("logged out")
	return s.holder.Clear()
}

// Token returns the current bearer token for outgoing requests.
func (s *Session) Token() string {
	return s.holder.Token()
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.holder.Token() != ""
}

func (s *Session) teardown() {
	s.logger.Warn("token rejected by backend, clearing session")
	if err := s.holder.Clear(); err != nil {
		s.logger.Warn("failed to clear token", "error", err)
	}
}

var _ domain.AuthSession = (*Session)(nil)
