package risks

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/rbac"
)

// Handler manages risk register endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers risk routes under a project. Edits are gated loosely
// at the route and precisely in the service, where ownership is known.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeView}))
		r.Get("/", h.list)
		r.Get("/{riskID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeCreate}))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(
			rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeEdit},
			rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeEditAssigned},
		))
		r.Put("/{riskID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeApprove}))
		r.Post("/{riskID}/approve", h.approve)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeEdit}))
		r.Delete("/{riskID}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	risks, err := h.service.ListByProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.logger.Error("list risks failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"risks": risks})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	risk, err := h.service.Get(r.Context(), chi.URLParam(r, "riskID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, risk)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRiskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	userID, _ := rbac.CurrentUserID(r)
	risk, err := h.service.Create(r.Context(), chi.URLParam(r, "projectID"), userID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, risk)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRiskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	risk, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "riskID"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, risk)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	risk, err := h.service.Approve(r.Context(), actor, chi.URLParam(r, "riskID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, risk)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "riskID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	userID, ok := rbac.CurrentUserID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return Actor{}, false
	}
	roles, err := h.rbac.RolesFor(r.Context(), userID)
	if err != nil {
		h.logger.Error("resolve actor roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return Actor{}, false
	}
	return Actor{ID: userID, Roles: roles}, true
}
