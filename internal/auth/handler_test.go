package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edudemy/edudemy/internal/authz"
	"github.com/edudemy/edudemy/internal/shared"
	"github.com/edudemy/edudemy/internal/users"
	_ "github.com/edudemy/edudemy/testing"
)

func newHandlerFixture(t *testing.T) (*Handler, *shared.SessionManager, *users.Service, *users.User) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")

	usersService := users.NewService(newStubUserRepo())
	user, err := usersService.Create(context.Background(), "jane@edudemy.local", "jane", "Jane Doe", authz.RoleTeacher, "correct-horse", 1)
	require.NoError(t, err)

	handler := NewHandler(nil, NewService(usersService), sessionManager, csrfManager)
	return handler, sessionManager, usersService, user
}

func doLogin(t *testing.T, handler *Handler, sessionManager *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	sess, err := sessionManager.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	handler.login(res, req)
	require.NoError(t, sessionManager.Commit(req.Context(), res, req, sess))
	return res, sess
}

func TestLoginIssuesSessionAndCSRFToken(t *testing.T) {
	handler, sessionManager, _, user := newHandlerFixture(t)

	res, sess := doLogin(t, handler, sessionManager, `{"login":"jane@edudemy.local","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var got loginResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "jane", got.Username)
	assert.Equal(t, "teacher", got.Role)
	assert.NotEmpty(t, got.CSRFToken)

	assert.Equal(t, "1", sess.User())
	assert.Equal(t, got.CSRFToken, sess.Get(shared.CSRFSessionKey))

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionManager.CookieName(), cookies[0].Name)
}

func TestLoginWrongPassword(t *testing.T) {
	handler, sessionManager, _, _ := newHandlerFixture(t)

	res, sess := doLogin(t, handler, sessionManager, `{"login":"jane@edudemy.local","password":"battery-staple"}`)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Empty(t, sess.User())
}

func TestLoginInactiveAccount(t *testing.T) {
	handler, sessionManager, usersService, user := newHandlerFixture(t)
	require.NoError(t, usersService.SetActive(context.Background(), user.ID, false))

	res, _ := doLogin(t, handler, sessionManager, `{"login":"jane","password":"correct-horse"}`)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginRejectsMissingFields(t *testing.T) {
	handler, sessionManager, _, _ := newHandlerFixture(t)

	res, _ := doLogin(t, handler, sessionManager, `{"login":"jane"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	handler, sessionManager, _, _ := newHandlerFixture(t)

	res, sess := doLogin(t, handler, sessionManager, `{"login":"jane","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, res.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sess.ID})
	loaded, err := sessionManager.Load(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "1", loaded.User())
	req = req.WithContext(shared.ContextWithSession(req.Context(), loaded))

	out := httptest.NewRecorder()
	handler.logout(out, req)
	require.NoError(t, sessionManager.Commit(req.Context(), out, req, loaded))
	assert.Equal(t, http.StatusOK, out.Code)

	// The stored session is gone; the next load starts fresh.
	again := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	again.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sess.ID})
	fresh, err := sessionManager.Load(context.Background(), again)
	require.NoError(t, err)
	assert.Empty(t, fresh.User())
}

func TestMeRequiresPrincipal(t *testing.T) {
	handler, _, _, user := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	res := httptest.NewRecorder()
	handler.me(res, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	principal := &authz.Principal{ID: user.ID, Role: authz.RoleTeacher, IsActive: true}
	req = req.WithContext(authz.ContextWithPrincipal(req.Context(), principal))
	res = httptest.NewRecorder()
	handler.me(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"role":"teacher"`)
}
