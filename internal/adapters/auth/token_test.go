package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edtclient/internal/domain"
)

func signedToken(t *testing.T, subject, role, name string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": subject, "role": role, "name": name}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newHolder(t *testing.T) *Holder {
	t.Helper()
	return NewHolder(NewFileTokenStore(filepath.Join(t.TempDir(), "token.json")))
}

func TestHolderPrimedFromStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileTokenStore(path)
	require.NoError(t, store.Save("persisted"))

	holder := NewHolder(store)
	assert.Equal(t, "persisted", holder.Token())
}

func TestHolderSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	holder := NewHolder(NewFileTokenStore(path))

	require.NoError(t, holder.Set("fresh"))
	assert.Equal(t, "fresh", holder.Token())

	// A new holder over the same store sees the token.
	again := NewHolder(NewFileTokenStore(path))
	assert.Equal(t, "fresh", again.Token())
}

func TestHolderClear(t *testing.T) {
	holder := newHolder(t)
	require.NoError(t, holder.Set("tok"))

	require.NoError(t, holder.Clear())
	assert.Empty(t, holder.Token())
}

func TestClaimsPeeksWithoutVerification(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	holder := newHolder(t)
	require.NoError(t, holder.Set(signedToken(t, "u-7", "formateur", "Alice Martin", exp)))

	claims, err := holder.Claims()
	require.NoError(t, err)
	assert.Equal(t, "u-7", claims.Subject)
	assert.Equal(t, "formateur", claims.Role)
	assert.Equal(t, "Alice Martin", claims.Name)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestClaimsWithoutToken(t *testing.T) {
	holder := newHolder(t)
	_, err := holder.Claims()
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestClaimsGarbageToken(t *testing.T) {
	holder := newHolder(t)
	require.NoError(t, holder.Set("not.a.jwt"))

	_, err := holder.Claims()
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  bool
	}{
		{
			name:  "future exp",
			token: func(t *testing.T) string { return signedToken(t, "u", "admin", "", now.Add(time.Hour)) },
			want:  false,
		},
		{
			name:  "past exp",
			token: func(t *testing.T) string { return signedToken(t, "u", "admin", "", now.Add(-time.Hour)) },
			want:  true,
		},
		{
			name:  "no exp claim",
			token: func(t *testing.T) string { return signedToken(t, "u", "admin", "", time.Time{}) },
			want:  false,
		},
		{
			name:  "unparseable",
			token: func(t *testing.T) string { return "garbage" },
			want:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holder := newHolder(t)
			require.NoError(t, holder.Set(tt.token(t)))
			assert.Equal(t, tt.want, holder.Expired(now))
		})
	}
}
