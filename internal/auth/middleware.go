package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/taskflow/taskflow/internal/platform/httpx"
	"github.com/taskflow/taskflow/internal/shared"
	"github.com/taskflow/taskflow/internal/users"
)

// UserSource loads user records and role labels for principal resolution.
type UserSource interface {
	GetUser(ctx context.Context, id int64) (*users.User, error)
	RolesForUser(ctx context.Context, id int64) ([]string, error)
}

// Middleware resolves the authenticated principal from the session. Roles
// are loaded fresh on every request: role membership can change between
// calls and is never cached across requests. Concurrent lookups for the
// same user collapse into a single round trip.
type Middleware struct {
	Logger *slog.Logger
	Users  UserSource
}

var principalGroup singleflight.Group

type resolvedUser struct {
	user  *users.User
	roles []string
}

// ResolvePrincipal attaches a Principal to the context when the session is
// bound to a valid, active user. Requests without one pass through
// unchanged; handlers decide whether that is acceptable.
func (m Middleware) ResolvePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(sess.User(), 10, 64)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("parse session user id", slog.String("value", sess.User()))
			}
			next.ServeHTTP(w, r)
			return
		}
		resolved, err := m.lookupUser(r.Context(), sess.User(), id)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) || errors.Is(err, shared.ErrNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Error("resolve principal", slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if !resolved.user.IsActive {
			next.ServeHTTP(w, r)
			return
		}
		principal := shared.NewPrincipal(resolved.user.ID, resolved.user.Name, resolved.roles)
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

func (m Middleware) lookupUser(ctx context.Context, key string, id int64) (resolvedUser, error) {
	resultChan := principalGroup.DoChan(key, func() (interface{}, error) {
		user, err := m.Users.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		roles, err := m.Users.RolesForUser(ctx, id)
		if err != nil {
			return nil, err
		}
		return resolvedUser{user: user, roles: roles}, nil
	})
	select {
	case <-ctx.Done():
		return resolvedUser{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return resolvedUser{}, res.Err
		}
		return res.Val.(resolvedUser), nil
	}
}

// RequireAuth rejects requests that carry no resolved principal.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.PrincipalFromContext(r.Context()); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
