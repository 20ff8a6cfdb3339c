package rbac_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoirmm/spoirmm/internal/rbac"
	"github.com/spoirmm/spoirmm/internal/shared"
)

type stubRoleSource struct {
	roles map[string][]rbac.Role
	err   error
	calls int
}

func (s *stubRoleSource) RolesForUser(ctx context.Context, userID string) ([]rbac.Role, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.roles[userID], nil
}

func requestWithUser(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess := &shared.Session{}
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAnyAllowsGrantedRole(t *testing.T) {
	source := &stubRoleSource{roles: map[string][]rbac.Role{"u1": {rbac.RoleViewer}}}
	mw := rbac.Middleware{Source: source}

	handler := mw.RequireAny(rbac.Permission{Namespace: rbac.NamespaceIssuesList, Scope: rbac.ScopeView})(okHandler())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithUser("u1"))
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRequireAnyForbidsMissingPermission(t *testing.T) {
	source := &stubRoleSource{roles: map[string][]rbac.Role{"u1": {rbac.RoleViewer}}}
	mw := rbac.Middleware{Source: source}

	handler := mw.RequireAny(rbac.Permission{Namespace: rbac.NamespaceUserManagement, Scope: rbac.ScopeManage})(okHandler())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithUser("u1"))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireAnyUnauthenticated(t *testing.T) {
	mw := rbac.Middleware{Source: &stubRoleSource{}}

	handler := mw.RequireAny(rbac.Permission{Namespace: rbac.NamespaceIssuesList, Scope: rbac.ScopeView})(okHandler())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithUser(""))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireAllNeedsEveryPermission(t *testing.T) {
	source := &stubRoleSource{roles: map[string][]rbac.Role{"u1": {rbac.RoleWorkingGroupMember}}}
	mw := rbac.Middleware{Source: source}

	both := mw.RequireAll(
		rbac.Permission{Namespace: rbac.NamespaceIssuesList, Scope: rbac.ScopeCreate},
		rbac.Permission{Namespace: rbac.NamespaceIssuesList, Scope: rbac.ScopeEdit},
	)(okHandler())
	res := httptest.NewRecorder()
	both.ServeHTTP(res, requestWithUser("u1"))
	assert.Equal(t, http.StatusOK, res.Code)

	tooMuch := mw.RequireAll(
		rbac.Permission{Namespace: rbac.NamespaceIssuesList, Scope: rbac.ScopeCreate},
		rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeEdit},
	)(okHandler())
	res = httptest.NewRecorder()
	tooMuch.ServeHTTP(res, requestWithUser("u1"))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestSourceErrorRendersInternalError(t *testing.T) {
	mw := rbac.Middleware{Source: &stubRoleSource{err: errors.New("pg down")}}

	handler := mw.RequireAny(rbac.Permission{Namespace: rbac.NamespaceIssuesList, Scope: rbac.ScopeView})(okHandler())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithUser("u1"))
	assert.Equal(t, http.StatusInternalServerError, res.Code)
}

func TestRoleCacheShortCircuitsSource(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := rbac.NewRoleCache(client, time.Minute)

	source := &stubRoleSource{roles: map[string][]rbac.Role{"u1": {rbac.RoleAdmin}}}
	mw := rbac.Middleware{Source: source, Cache: cache}

	ctx := context.Background()
	roles, err := mw.RolesFor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []rbac.Role{rbac.RoleAdmin}, roles)
	assert.Equal(t, 1, source.calls)

	roles, err = mw.RolesFor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []rbac.Role{rbac.RoleAdmin}, roles)
	assert.Equal(t, 1, source.calls, "second lookup should come from cache")

	require.NoError(t, cache.Invalidate(ctx, "u1"))
	_, err = mw.RolesFor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "invalidated entry should hit the source again")
}
