package workgroups

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/rbac"
)

// Handler manages working group endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers working group routes under a project.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceProjectPlanning, Scope: rbac.ScopeView}))
		r.Get("/", h.list)
		r.Get("/{groupID}", h.get)
		r.Get("/{groupID}/meetings", h.listMeetings)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceProjectPlanning, Scope: rbac.ScopeManage}))
		r.Post("/", h.create)
		r.Put("/{groupID}", h.update)
		r.Delete("/{groupID}", h.delete)
		r.Post("/{groupID}/meetings", h.scheduleMeeting)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.logger.Error("list workgroups failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"workgroups": groups})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	group, err := h.service.Group(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req SaveGroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	group, err := h.service.CreateGroup(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, group)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req SaveGroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	group, err := h.service.UpdateGroup(r.Context(), chi.URLParam(r, "groupID"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGroup(r.Context(), chi.URLParam(r, "groupID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) scheduleMeeting(w http.ResponseWriter, r *http.Request) {
	var req ScheduleMeetingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	meeting, err := h.service.ScheduleMeeting(r.Context(), chi.URLParam(r, "groupID"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, meeting)
}

func (h *Handler) listMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.service.ListMeetings(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"meetings": meetings})
}
