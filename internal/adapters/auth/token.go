package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"edtclient/internal/domain"
)

// TokenClaims are the fields the client reads out of the backend's
// token for its own display and expiry decisions. The token is parsed
// without verification: the backend is the only party that validates
// signatures, the client just peeks.
type TokenClaims struct {
	Subject   string
	Role      string
	Name      string
	ExpiresAt time.Time
}

// Holder keeps the current bearer token in memory and mirrors it to
// the persistent store. It is the process-wide session credential
// state: loaded at startup, set by login, cleared by logout or auth
// failure.
type Holder struct {
	mu    sync.RWMutex
	token string
	store domain.TokenStore
}

// NewHolder returns a holder primed with whatever token the store has
// persisted from a previous run. A store read failure just starts the
// holder logged out.
func NewHolder(store domain.TokenStore) *Holder {
	h := &Holder{store: store}
	if token, err := store.Load(); err == nil {
		h.token = token
	}
	return h
}

// Token returns the current bearer token, empty when logged out.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Set adopts a new token and persists it.
func (h *Holder) Set(token string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
	if err := h.store.Save(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// Clear drops the token from memory and the store.
func (h *Holder) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = ""
	if err := h.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear persisted token: %w", err)
	}
	return nil
}

type peekClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Name string `json:"name"`
}

// Claims parses the held token without verifying its signature.
func (h *Holder) Claims() (*TokenClaims, error) {
	token := h.Token()
	if token == "" {
		return nil, domain.ErrNotLoggedIn
	}
	var claims peekClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	out := &TokenClaims{
		Subject: claims.Subject,
		Role:    claims.Role,
		Name:    claims.Name,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Expired reports whether the held token carries an exp claim in the
// past. An unparseable or missing token counts as expired.
func (h *Holder) Expired(now time.Time) bool {
	claims, err := h.Claims()
	if err != nil {
		return true
	}
	if claims.ExpiresAt.IsZero() {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
