package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/internal/shared"
	_ "github.com/taskflow/taskflow/testing"
)

type stubRepo struct {
	user            *auth.User
	createdSessions []string
	deletedSessions []string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.createdSessions = append(s.createdSessions, id)
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deletedSessions = append(s.deletedSessions, id)
	return nil
}

type stubRoles struct {
	roles []string
}

func (s *stubRoles) RolesForUser(ctx context.Context, id int64) ([]string, error) {
	return s.roles, nil
}

func newAuthHandler(t *testing.T, repo auth.Repository, roles auth.RoleSource) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), sessionManager, csrfManager, roles)
	return handler, sessionManager
}

// serveWithSession runs the request through the auth routes with a freshly
// loaded session attached, committing it afterwards the way the app
// middleware does.
func serveWithSession(t *testing.T, handler *auth.Handler, sessionManager *shared.SessionManager, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()

	sess, err := sessionManager.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		handler.MountRoutes(r)
	})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.NoError(t, sessionManager.Commit(req.Context(), httptest.NewRecorder(), req, sess))
	return res, sess
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &auth.User{ID: 1, Name: "Alice", Email: "alice@test.local", PasswordHash: string(hashed), IsActive: true}
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correct-pass")}
	handler, sessionManager := newAuthHandler(t, repo, &stubRoles{roles: []string{"member"}})

	body := `{"email":"alice@test.local","password":"correct-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, sess := serveWithSession(t, handler, sessionManager, req)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		User struct {
			ID    int64    `json:"id"`
			Name  string   `json:"name"`
			Roles []string `json:"roles"`
		} `json:"user"`
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))

	assert.Equal(t, int64(1), payload.User.ID)
	assert.Equal(t, "Alice", payload.User.Name)
	assert.Equal(t, []string{"member"}, payload.User.Roles)
	assert.NotEmpty(t, payload.CSRFToken)

	assert.Equal(t, "1", sess.User())
	require.Len(t, repo.createdSessions, 1)
	assert.Equal(t, sess.ID, repo.createdSessions[0])
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correct-pass")}
	handler, sessionManager := newAuthHandler(t, repo, &stubRoles{})

	body := `{"email":"alice@test.local","password":"wrong-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, sess := serveWithSession(t, handler, sessionManager, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Empty(t, sess.User())
}

func TestLoginUnknownEmail(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{}, &stubRoles{})

	body := `{"email":"nobody@test.local","password":"some-pass-1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, _ := serveWithSession(t, handler, sessionManager, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginInactiveUser(t *testing.T) {
	user := activeUser(t, "correct-pass")
	user.IsActive = false
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: user}, &stubRoles{})

	body := `{"email":"alice@test.local","password":"correct-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, _ := serveWithSession(t, handler, sessionManager, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginRejectsInvalidPayload(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{}, &stubRoles{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"not-an-email","password":"short"}`))
	req.Header.Set("Content-Type", "application/json")

	res, _ := serveWithSession(t, handler, sessionManager, req)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correct-pass")}
	handler, sessionManager := newAuthHandler(t, repo, &stubRoles{})

	loginReq := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"alice@test.local","password":"correct-pass"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRes, sess := serveWithSession(t, handler, sessionManager, loginReq)
	require.Equal(t, http.StatusOK, loginRes.Code)

	logoutReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logoutReq.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sess.ID})
	res, _ := serveWithSession(t, handler, sessionManager, logoutReq)

	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, repo.deletedSessions, 1)
	assert.Equal(t, sess.ID, repo.deletedSessions[0])
}

func TestShowSessionRequiresPrincipal(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{}, &stubRoles{})

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	res, _ := serveWithSession(t, handler, sessionManager, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestShowSessionForAuthenticatedPrincipal(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{}, &stubRoles{})

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	principal := shared.NewPrincipal(1, "Alice", []string{"member"})
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), principal))

	res, _ := serveWithSession(t, handler, sessionManager, req)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"csrf_token"`)
	assert.Contains(t, res.Body.String(), `"Alice"`)
}
