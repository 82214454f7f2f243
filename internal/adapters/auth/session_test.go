package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edtclient/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeAPI implements the API interface with canned responses.
type fakeAPI struct {
	loginToken string
	loginUser  *domain.User
	loginErr   error
	loginCalls int

	meUser *domain.User
	meErr  error

	changeErr   error
	changeCalls int
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

func (f *fakeAPI) Me(ctx context.Context) (*domain.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.meUser, nil
}

func (f *fakeAPI) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	f.changeCalls++
	return f.changeErr
}

func newTestSession(t *testing.T, api *fakeAPI) (*Session, *Holder) {
	t.Helper()
	holder := NewHolder(NewFileTokenStore(filepath.Join(t.TempDir(), "token.json")))
	return NewSession(api, holder, testLogger), holder
}

func TestLoginAdoptsToken(t *testing.T) {
	api := &fakeAPI{
		loginToken: "tok-1",
		loginUser:  &domain.User{ID: "u-1", Name: "Alice", Role: domain.RoleAdmin},
	}
	session, holder := newTestSession(t, api)

	user, err := session.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "tok-1", holder.Token())
	assert.True(t, session.Authenticated())
}

func TestLoginRequiresCredentials(t *testing.T) {
	api := &fakeAPI{}
	session, _ := newTestSession(t, api)

	_, err := session.Login(context.Background(), "", "secret")
	assert.Error(t, err)
	_, err = session.Login(context.Background(), "alice", "")
	assert.Error(t, err)
	assert.Zero(t, api.loginCalls)
}

func TestLoginFailureKeepsLoggedOut(t *testing.T) {
	api := &fakeAPI{loginErr: errors.New("identifiants invalides")}
	session, holder := newTestSession(t, api)

	_, err := session.Login(context.Background(), "alice", "wrong")
	assert.Error(t, err)
	assert.Empty(t, holder.Token())
}

func TestMeWithoutToken(t *testing.T) {
	session, _ := newTestSession(t, &fakeAPI{})
	_, err := session.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestMeUnauthorizedTearsDownSession(t *testing.T) {
	api := &fakeAPI{meErr: domain.ErrUnauthorized}
	session, holder := newTestSession(t, api)
	require.NoError(t, holder.Set("stale"))

	_, err := session.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, holder.Token())
	assert.False(t, session.Authenticated())
}

func TestMeOtherErrorKeepsToken(t *testing.T) {
	api := &fakeAPI{meErr: errors.New("backend down")}
	session, holder := newTestSession(t, api)
	require.NoError(t, holder.Set("still-good"))

	_, err := session.Me(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "still-good", holder.Token())
}

func TestChangePasswordConfirmMismatch(t *testing.T) {
	api := &fakeAPI{}
	session, _ := newTestSession(t, api)

	err := session.ChangePassword(context.Background(), "old", "new", "different")
	assert.Error(t, err)
	assert.Zero(t, api.changeCalls)
}

func TestChangePasswordUnauthorizedTearsDown(t *testing.T) {
	api := &fakeAPI{changeErr: domain.ErrUnauthorized}
	session, holder := newTestSession(t, api)
	require.NoError(t, holder.Set("stale"))

	err := session.ChangePassword(context.Background(), "old", "new", "new")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, holder.Token())
}

func TestLogoutClearsToken(t *testing.T) {
	session, holder := newTestSession(t, &fakeAPI{})
	require.NoError(t, holder.Set("tok"))

	require.NoError(t, session.Logout())
	assert.Empty(t, holder.Token())
}
