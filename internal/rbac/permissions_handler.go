package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
)

// PermissionsHandler exposes the role and permission catalog.
type PermissionsHandler struct {
	rbac Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{rbac: rbac}
}

// MountRoutes registers permission catalog routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(Permission{Namespace: NamespaceAdminSettings, Scope: ScopeView}))
		r.Get("/", h.listGrants)
	})
	r.Get("/me", h.currentUserGrants)
}

type roleGrants struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (h *PermissionsHandler) listGrants(w http.ResponseWriter, r *http.Request) {
	catalog := make([]roleGrants, 0, len(Roles()))
	for _, role := range Roles() {
		perms := GrantsFor(role)
		names := make([]string, len(perms))
		for i, p := range perms {
			names[i] = p.String()
		}
		catalog = append(catalog, roleGrants{Role: string(role), Permissions: names})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": catalog})
}

// currentUserGrants lets the SPA gate its own UI without guessing at the
// server-side grant table.
func (h *PermissionsHandler) currentUserGrants(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	roles, err := h.rbac.RolesFor(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	names := make([]string, len(roles))
	granted := make([]string, 0, 8)
	seen := make(map[Permission]struct{})
	for i, role := range roles {
		names[i] = string(role)
		for _, p := range GrantsFor(role) {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			granted = append(granted, p.String())
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": names, "permissions": granted})
}
