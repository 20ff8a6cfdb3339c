package rbac

import (
	"context"
	"net/http"
	"strings"

	"log/slog"

	"github.com/spoirmm/spoirmm/internal/shared"
)

// RoleSource resolves the role set for a user identifier, typically backed by
// the user profile store.
type RoleSource interface {
	RolesForUser(ctx context.Context, userID string) ([]Role, error)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Source RoleSource
	Cache  *RoleCache
	Logger *slog.Logger
}

// RequireAny ensures the current user holds at least one of the required
// permissions. Missing a permission renders 403; a missing session renders
// 401. Neither is an application error.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			roles, ok := m.currentRoles(w, r)
			if !ok {
				return
			}
			if HasAnyPermission(roles, perms...) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireAll ensures the current user holds all required permissions.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			roles, ok := m.currentRoles(w, r)
			if !ok {
				return
			}
			if HasAllPermissions(roles, perms...) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RolesFor resolves the role set for a user, consulting the cache first.
func (m Middleware) RolesFor(ctx context.Context, userID string) ([]Role, error) {
	if roles, ok := m.Cache.Get(ctx, userID); ok {
		return roles, nil
	}
	roles, err := m.Source.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m.Cache.Set(ctx, userID, roles)
	return roles, nil
}

// currentRoles writes the failure response itself and reports ok=false when
// the caller should stop.
func (m Middleware) currentRoles(w http.ResponseWriter, r *http.Request) ([]Role, bool) {
	userID, ok := CurrentUserID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}
	roles, err := m.RolesFor(r.Context(), userID)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac resolve roles", slog.Any("error", err))
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}
	return roles, true
}

// CurrentUserID extracts the authenticated user id from the request session.
func CurrentUserID(r *http.Request) (string, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return "", false
	}
	id := strings.TrimSpace(sess.User())
	if id == "" {
		return "", false
	}
	return id, true
}
