package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/acadportal/eventportal/internal/utils"
	"github.com/acadportal/eventportal/pkg/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

var coordinator = User{
	Id:          "u-1",
	Name:        "Asha Rao",
	Email:       "asha@college.edu",
	Designation: "Assistant Professor",
	Department:  "CSE",
	Role:        Coordinator,
}

type profileStub struct {
	profile User
	err     error
	calls   int
}

func (p *profileStub) CurrentProfile(_ context.Context, _ string) (User, error) {
	p.calls++
	return p.profile, p.err
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func setupSession(t *testing.T) (*Session, *storage.RepositoryStub, *profileStub, *utils.MockClock) {
	repo := storage.NewRepositoryStub()
	profiles := &profileStub{profile: coordinator}
	clock := &utils.MockClock{FixedNow: now}
	return NewSession(repo, profiles, clock), repo, profiles, clock
}

func TestSession_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("should store token and profile", func(t *testing.T) {
		// given
		session, repo, profiles, _ := setupSession(t)
		token := signedToken(t, now.Add(time.Hour))

		// when
		u, err := session.Login(ctx, token)

		// then
		require.NoError(t, err)
		assert.Equal(t, coordinator, u)
		assert.Equal(t, 1, profiles.calls)
		assert.True(t, repo.Has("auth.token"))
		assert.True(t, repo.Has("auth.user"))
		stored, err := session.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, token, stored)
	})

	t.Run("should reject an expired token without calling the backend", func(t *testing.T) {
		session, _, profiles, _ := setupSession(t)

		_, err := session.Login(ctx, signedToken(t, now.Add(-time.Minute)))

		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.Equal(t, 0, profiles.calls)
	})

	t.Run("should reject a malformed token", func(t *testing.T) {
		session, _, _, _ := setupSession(t)

		_, err := session.Login(ctx, "not-a-jwt")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should fail when the profile cannot be loaded", func(t *testing.T) {
		session, repo, profiles, _ := setupSession(t)
		profiles.err = errors.New("backend down")

		_, err := session.Login(ctx, signedToken(t, now.Add(time.Hour)))

		assert.Error(t, err)
		assert.False(t, repo.Has("auth.token"))
		_, err = session.CurrentUser()
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestSession_TokenExpiry(t *testing.T) {
	ctx := context.Background()
	session, repo, _, clock := setupSession(t)
	_, err := session.Login(ctx, signedToken(t, now.Add(time.Hour)))
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = session.Token(ctx)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, repo.Has("auth.token"))
	_, err = session.CurrentUser()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSession_Restore(t *testing.T) {
	ctx := context.Background()
	first, repo, profiles, clock := setupSession(t)
	_, err := first.Login(ctx, signedToken(t, now.Add(time.Hour)))
	require.NoError(t, err)

	second := NewSession(repo, profiles, clock)
	require.NoError(t, second.Restore(ctx))

	u, err := second.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, coordinator.Id, u.Id)
}

func TestSession_Logout(t *testing.T) {
	ctx := context.Background()
	session, repo, _, _ := setupSession(t)
	_, err := session.Login(ctx, signedToken(t, now.Add(time.Hour)))
	require.NoError(t, err)

	require.NoError(t, session.Logout(ctx))

	_, err = session.Token(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.False(t, repo.Has("auth.user"))
}

func TestHandler_Login(t *testing.T) {
	t.Run("should return 401 for an expired token", func(t *testing.T) {
		session, _, _, _ := setupSession(t)
		handler := NewHandler(session)
		body := `{"token":"` + signedToken(t, now.Add(-time.Hour)) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should return the profile", func(t *testing.T) {
		session, _, _, _ := setupSession(t)
		handler := NewHandler(session)
		body := `{"token":"` + signedToken(t, now.Add(time.Hour)) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Asha Rao"`)
	})
}

func TestSession_OnChange(t *testing.T) {
	// given
	ctx := context.Background()
	session, _, _, _ := setupSession(t)
	changes := 0
	session.OnChange(func() { changes++ })

	// when
	_, err := session.Login(ctx, signedToken(t, now.Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, session.Logout(ctx))

	// then
	assert.Equal(t, 2, changes)
}
