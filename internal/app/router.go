package app

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/spoirmm/spoirmm/internal/audit"
	"github.com/spoirmm/spoirmm/internal/auth"
	"github.com/spoirmm/spoirmm/internal/issues"
	"github.com/spoirmm/spoirmm/internal/players"
	"github.com/spoirmm/spoirmm/internal/projects"
	"github.com/spoirmm/spoirmm/internal/rbac"
	"github.com/spoirmm/spoirmm/internal/risks"
	"github.com/spoirmm/spoirmm/internal/shared"
	"github.com/spoirmm/spoirmm/internal/users"
	"github.com/spoirmm/spoirmm/internal/workgroups"
	"github.com/spoirmm/spoirmm/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	ProjectsHandler    *projects.Handler
	PlayersHandler     *players.Handler
	IssuesHandler      *issues.Handler
	RisksHandler       *risks.Handler
	WorkgroupsHandler  *workgroups.Handler
	AuditHandler       *audit.Handler
	PermissionsHandler *rbac.PermissionsHandler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router serving the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.ProjectsHandler != nil {
			r.Route("/projects", func(r chi.Router) {
				params.ProjectsHandler.MountRoutes(r)
				if params.PlayersHandler != nil {
					r.Route("/{projectID}/players", params.PlayersHandler.MountRoutes)
				}
				if params.IssuesHandler != nil {
					r.Route("/{projectID}/issues", params.IssuesHandler.MountRoutes)
				}
				if params.RisksHandler != nil {
					r.Route("/{projectID}/risks", params.RisksHandler.MountRoutes)
				}
				if params.WorkgroupsHandler != nil {
					r.Route("/{projectID}/workgroups", params.WorkgroupsHandler.MountRoutes)
				}
			})
		}
		if params.PlayersHandler != nil {
			r.Route("/players", params.PlayersHandler.MountOptionRoutes)
		}
		if params.PermissionsHandler != nil {
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			r.Route("/audit", params.AuditHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
