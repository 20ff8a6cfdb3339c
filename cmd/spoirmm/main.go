package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/spoirmm/spoirmm/internal/app"
	"github.com/spoirmm/spoirmm/internal/audit"
	"github.com/spoirmm/spoirmm/internal/auth"
	"github.com/spoirmm/spoirmm/internal/issues"
	"github.com/spoirmm/spoirmm/internal/platform/cache"
	"github.com/spoirmm/spoirmm/internal/platform/db"
	"github.com/spoirmm/spoirmm/internal/players"
	"github.com/spoirmm/spoirmm/internal/projects"
	"github.com/spoirmm/spoirmm/internal/rbac"
	"github.com/spoirmm/spoirmm/internal/risks"
	"github.com/spoirmm/spoirmm/internal/shared"
	"github.com/spoirmm/spoirmm/internal/users"
	"github.com/spoirmm/spoirmm/internal/workgroups"
	"github.com/spoirmm/spoirmm/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "spoirmm_session", cfg.SessionTTL, cfg.IsProduction())

	queueClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, cfg.SetupURLBase)
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	recorder := audit.NewRecorder(pool, logger)
	resolver := rbac.NewResolver(cfg.Superusers())
	roleCache := rbac.NewRoleCache(redisClient, cfg.RoleCacheTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(logger, usersRepo, authService, recorder, queueClient, resolver, roleCache)

	rbacMiddleware := rbac.Middleware{Source: usersService, Cache: roleCache, Logger: logger}

	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	projectsService := projects.NewService(projects.NewRepository(pool))
	projectsHandler := projects.NewHandler(logger, projectsService, rbacMiddleware)

	playersService := players.NewService(players.NewRepository(pool))
	playersHandler := players.NewHandler(logger, playersService, rbacMiddleware)

	risksService := risks.NewService(risks.NewRepository(pool))
	risksHandler := risks.NewHandler(logger, risksService, rbacMiddleware)

	issuesService := issues.NewService(issues.NewRepository(pool), risksService)
	issuesHandler := issues.NewHandler(logger, issuesService, rbacMiddleware)

	workgroupsService := workgroups.NewService(workgroups.NewRepository(pool))
	workgroupsHandler := workgroups.NewHandler(logger, workgroupsService, rbacMiddleware)

	auditService := audit.NewService(audit.NewRepository(pool))
	auditHandler := audit.NewHandler(logger, auditService, rbacMiddleware)

	permissionsHandler := rbac.NewPermissionsHandler(rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		ProjectsHandler:    projectsHandler,
		PlayersHandler:     playersHandler,
		IssuesHandler:      issuesHandler,
		RisksHandler:       risksHandler,
		WorkgroupsHandler:  workgroupsHandler,
		AuditHandler:       auditHandler,
		PermissionsHandler: permissionsHandler,
		JobHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
