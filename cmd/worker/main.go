package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/spoirmm/spoirmm/internal/app"
	"github.com/spoirmm/spoirmm/internal/audit"
	"github.com/spoirmm/spoirmm/internal/auth"
	"github.com/spoirmm/spoirmm/internal/platform/db"
	"github.com/spoirmm/spoirmm/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	recorder := audit.NewRecorder(pool, logger)
	authService := auth.NewService(auth.NewRepository(pool))

	cleanupJob := jobs.NewIdentityCleanupJob(authService, recorder, logger)
	sweepJob := jobs.NewIdentitySweepJob(authService, recorder, logger)
	mailer := jobs.NewMailer(cfg.SMTPAddr(), cfg.SMTPFrom, nil, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskIdentityCleanup, Handler: cleanupJob.Handle},
			{Type: jobs.TaskIdentitySweep, Handler: sweepJob.Handle},
			{Type: jobs.TaskSendEmail, Handler: mailer.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.IdentitySweepCron, Task: jobs.NewIdentitySweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
