package players

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/rbac"
	"github.com/spoirmm/spoirmm/internal/shared"
)

// Handler manages stakeholder registry endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		rbac:     rbac,
	}
}

// MountRoutes registers player routes under a project.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceProjectPlanning, Scope: rbac.ScopeView}))
		r.Get("/", h.list)
		r.Get("/{playerID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceProjectPlanning, Scope: rbac.ScopeEdit}))
		r.Post("/", h.create)
		r.Put("/{playerID}", h.update)
		r.Delete("/{playerID}", h.delete)
	})
}

// MountOptionRoutes registers the type-option lookup used by stakeholder
// forms. It only exposes the static rule tables, so view access suffices.
func (h *Handler) MountOptionRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Permission{Namespace: rbac.NamespaceProjectPlanning, Scope: rbac.ScopeView}))
		r.Get("/options", h.options)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	list, err := h.service.ListByProject(r.Context(), projectID)
	if err != nil {
		h.logger.Error("list players failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"players": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	player, err := h.service.Get(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.respondServiceError(w, "get player", err)
		return
	}
	httpx.JSON(w, http.StatusOK, player)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if fields := requestFields(h.validate.Struct(req)); fields != nil {
		httpx.FieldProblem(w, fields)
		return
	}
	userID, _ := rbac.CurrentUserID(r)
	player, err := h.service.Create(r.Context(), chi.URLParam(r, "projectID"), userID, req)
	if err != nil {
		h.respondServiceError(w, "create player", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, player)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlayerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if fields := requestFields(h.validate.Struct(req)); fields != nil {
		httpx.FieldProblem(w, fields)
		return
	}
	player, err := h.service.Update(r.Context(), chi.URLParam(r, "playerID"), req)
	if err != nil {
		h.respondServiceError(w, "update player", err)
		return
	}
	httpx.JSON(w, http.StatusOK, player)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "playerID")); err != nil {
		h.respondServiceError(w, "delete player", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// options returns the allowed roles and natures for a player type, plus the
// defaults a form should reset to when the type changes.
func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	playerType, ok := ParseType(r.URL.Query().Get("type"))
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "unknown player type")
		return
	}
	var draft Player
	ApplyTypeChange(&draft, playerType)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"type":           playerType,
		"roles":          RoleOptions(playerType),
		"natures":        NatureOptions(playerType),
		"default_role":   draft.Role,
		"default_nature": draft.Nature,
	})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		httpx.FieldProblem(w, verr.Fields)
		return
	}
	if errors.Is(err, shared.ErrNotFound) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

// requestFields converts validator errors into a field error map; nil when
// the request is well-formed.
func requestFields(err error) map[string]string {
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = "failed " + fe.Tag() + " validation"
		}
	} else {
		fields["request"] = err.Error()
	}
	return fields
}
