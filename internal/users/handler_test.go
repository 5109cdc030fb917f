package users

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow/internal/shared"
)

type stubRepo struct {
	users []User
}

func (s *stubRepo) GetUser(ctx context.Context, id int64) (*User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubRepo) ListUsers(ctx context.Context) ([]User, error) {
	return s.users, nil
}

func (s *stubRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.GetUser(ctx, id)
	return err == nil, nil
}

func (s *stubRepo) RolesForUser(ctx context.Context, id int64) ([]string, error) {
	return nil, nil
}

func newUsersRouter(repo RepositoryPort) chi.Router {
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo))
	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		handler.MountRoutes(r)
	})
	return r
}

func listUsers(t *testing.T, router chi.Router, p *shared.Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	if p != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), *p))
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestListUsersRequiresPrincipal(t *testing.T) {
	router := newUsersRouter(&stubRepo{})

	res := listUsers(t, router, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestListUsersAdminOnly(t *testing.T) {
	router := newUsersRouter(&stubRepo{users: []User{{ID: 1, Name: "Admin"}}})

	member := shared.NewPrincipal(10, "Alice", []string{"member"})
	res := listUsers(t, router, &member)
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestListUsersReturnsRefs(t *testing.T) {
	router := newUsersRouter(&stubRepo{users: []User{
		{ID: 1, Name: "Admin", Email: "admin@test.local"},
		{ID: 10, Name: "Alice", Email: "alice@test.local"},
	}})

	admin := shared.NewPrincipal(1, "Admin", []string{shared.RoleAdmin})
	res := listUsers(t, router, &admin)
	require.Equal(t, http.StatusOK, res.Code)

	// Only id and name leave the service; emails stay internal.
	assert.JSONEq(t, `{"users":[{"id":1,"name":"Admin"},{"id":10,"name":"Alice"}]}`, res.Body.String())
}
