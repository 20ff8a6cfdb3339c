package jobs

import (
	"context"
	"encoding/json"
	"errors"

	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/spoirmm/spoirmm/internal/audit"
	"github.com/spoirmm/spoirmm/internal/auth"
)

// IdentityStore is the slice of the auth service the cleanup jobs need.
type IdentityStore interface {
	Remove(ctx context.Context, userID string) error
	Orphaned(ctx context.Context, limit int) ([]auth.Identity, error)
}

// Auditor records reconciliation outcomes.
type Auditor interface {
	RecordBestEffort(ctx context.Context, entry audit.Entry)
}

// IdentityCleanupJob retries deletion of one auth identity after the inline
// best-effort removal failed. Asynq's retry policy supplies the backoff.
type IdentityCleanupJob struct {
	Identities IdentityStore
	Auditor    Auditor
	Logger     *slog.Logger
}

// NewIdentityCleanupJob initialises the cleanup handler.
func NewIdentityCleanupJob(identities IdentityStore, auditor Auditor, logger *slog.Logger) *IdentityCleanupJob {
	return &IdentityCleanupJob{Identities: identities, Auditor: auditor, Logger: logger}
}

// Handle removes the identity named in the payload. A failure returns the
// error so Asynq retries with backoff.
func (j *IdentityCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Identities == nil {
		return errors.New("identity cleanup: handler not configured")
	}
	var payload IdentityCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.UserID == "" {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("user_id", payload.UserID))
	if err := j.Identities.Remove(ctx, payload.UserID); err != nil {
		logger.Warn("identity removal failed, will retry", slog.Any("error", err))
		j.Auditor.RecordBestEffort(ctx, audit.Entry{
			Action:       audit.ActionUserAuthDeletionFailed,
			TargetUserID: payload.UserID,
			PerformedBy:  "system",
			Details:      map[string]any{"error": err.Error(), "source": TaskIdentityCleanup},
		})
		return err
	}

	logger.Info("orphaned identity removed")
	j.Auditor.RecordBestEffort(ctx, audit.Entry{
		Action:       audit.ActionUserAutoDeletedFromAuth,
		TargetUserID: payload.UserID,
		PerformedBy:  "system",
		Details:      map[string]any{"source": TaskIdentityCleanup},
	})
	return nil
}

func (j *IdentityCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskIdentityCleanup))
	}
	return slog.Default().With(slog.String("job", TaskIdentityCleanup))
}
