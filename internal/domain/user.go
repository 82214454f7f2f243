package domain

import "context"

// Roles known to the backend's RBAC layer.
const (
	RoleAdmin       = "admin"
	RoleSurveillant = "surveillant"
	RoleFormateur   = "formateur"
)

// User is the authenticated identity as reported by the backend.
type User struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	Modules []string `json:"modules,omitempty"`
}

// IsAdmin reports whether the user may mutate timetables directly.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TokenStore persists the bearer token across runs. It is the only
// client-side persistence in the system.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// AuthSession owns the token lifecycle: initialized from the store at
// startup, mutated by login/logout, torn down on auth failure.
type AuthSession interface {
	Login(ctx context.Context, username, password string) (*User, error)
	Me(ctx context.Context) (*User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error
	Logout() error
	Token() string
	Authenticated() bool
}
