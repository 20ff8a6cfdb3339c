package issues

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/rbac"
)

// Handler manages issue register endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers issue routes under a project. Conversion also writes
// to the risk register, so it needs create access there too.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceIssuesList, Scope: rbac.ScopeView}))
		r.Get("/", h.list)
		r.Get("/{issueID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceIssuesList, Scope: rbac.ScopeCreate}))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceIssuesList, Scope: rbac.ScopeEdit}))
		r.Put("/{issueID}", h.update)
		r.Delete("/{issueID}", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(
			rbac.Permission{Namespace: rbac.NamespaceIssuesList, Scope: rbac.ScopeEdit},
			rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeCreate},
		))
		r.Post("/{issueID}/convert", h.convert)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	issues, err := h.service.ListByProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.logger.Error("list issues failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"issues": issues})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	issue, err := h.service.Get(r.Context(), chi.URLParam(r, "issueID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, issue)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateIssueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	userID, _ := rbac.CurrentUserID(r)
	issue, err := h.service.Create(r.Context(), chi.URLParam(r, "projectID"), userID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, issue)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateIssueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	issue, err := h.service.Update(r.Context(), chi.URLParam(r, "issueID"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, issue)
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	userID, _ := rbac.CurrentUserID(r)
	issue, err := h.service.Convert(r.Context(), chi.URLParam(r, "issueID"), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, issue)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "issueID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
