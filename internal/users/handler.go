package users

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/rbac"
)

// Handler manages user administration endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers user management routes. Reads require view access on
// the user management area, writes require manage, and complete deletion is
// re-checked inside the service on top of the route gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(
			rbac.Permission{Namespace: rbac.NamespaceUserManagement, Scope: rbac.ScopeView},
			rbac.Permission{Namespace: rbac.NamespaceUserManagement, Scope: rbac.ScopeManage},
		))
		r.Get("/", h.list)
		r.Get("/{userID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceUserManagement, Scope: rbac.ScopeManage}))
		r.Post("/", h.create)
		r.Put("/{userID}", h.update)
		r.Post("/{userID}/deactivate", h.deactivate)
		r.Post("/{userID}/reactivate", h.reactivate)
		r.Delete("/{userID}", h.deleteCompletely)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	profiles, err := h.service.List(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": profiles})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	actorID, _ := rbac.CurrentUserID(r)
	profile, err := h.service.Create(r.Context(), actorID, req)
	if err != nil {
		h.respondServiceError(w, "create user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	actorID, _ := rbac.CurrentUserID(r)
	profile, err := h.service.Update(r.Context(), actorID, chi.URLParam(r, "userID"), req)
	if err != nil {
		h.respondServiceError(w, "update user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	actorID, _ := rbac.CurrentUserID(r)
	if err := h.service.Deactivate(r.Context(), actorID, chi.URLParam(r, "userID")); err != nil {
		h.respondServiceError(w, "deactivate user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) {
	actorID, _ := rbac.CurrentUserID(r)
	if err := h.service.Reactivate(r.Context(), actorID, chi.URLParam(r, "userID")); err != nil {
		h.respondServiceError(w, "reactivate user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) deleteCompletely(w http.ResponseWriter, r *http.Request) {
	actorID, _ := rbac.CurrentUserID(r)
	result, err := h.service.DeleteCompletely(r.Context(), actorID, chi.URLParam(r, "userID"))
	if err != nil {
		h.respondServiceError(w, "delete user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op+" rejected", slog.Any("error", err))
	httpx.RespondError(w, err)
}
