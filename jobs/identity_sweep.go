package jobs

import (
	"context"
	"errors"

	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/spoirmm/spoirmm/internal/audit"
)

const sweepBatchSize = 100

// IdentitySweepJob is the scheduled backstop behind the inline cleanup: any
// auth identity left without a profile row, whatever removed the profile, is
// deleted and audited here.
type IdentitySweepJob struct {
	Identities IdentityStore
	Auditor    Auditor
	Logger     *slog.Logger
}

// NewIdentitySweepJob initialises the sweep handler.
func NewIdentitySweepJob(identities IdentityStore, auditor Auditor, logger *slog.Logger) *IdentitySweepJob {
	return &IdentitySweepJob{Identities: identities, Auditor: auditor, Logger: logger}
}

// Handle scans for orphaned identities and removes them one by one. A single
// failed removal is audited and skipped; the task only errors when the scan
// itself fails, so one stuck identity cannot stall the sweep.
func (j *IdentitySweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Identities == nil {
		return errors.New("identity sweep: handler not configured")
	}
	logger := j.logger()

	orphans, err := j.Identities.Orphaned(ctx, sweepBatchSize)
	if err != nil {
		logger.Error("orphan scan failed", slog.Any("error", err))
		return err
	}
	if len(orphans) == 0 {
		logger.Info("no orphaned identities")
		return nil
	}

	removed := 0
	for _, identity := range orphans {
		if err := j.Identities.Remove(ctx, identity.UserID); err != nil {
			logger.Warn("orphan removal failed",
				slog.String("user_id", identity.UserID), slog.Any("error", err))
			j.Auditor.RecordBestEffort(ctx, audit.Entry{
				Action:       audit.ActionUserAuthDeletionFailed,
				TargetUserID: identity.UserID,
				PerformedBy:  "system",
				Details:      map[string]any{"error": err.Error(), "source": TaskIdentitySweep},
			})
			continue
		}
		removed++
		j.Auditor.RecordBestEffort(ctx, audit.Entry{
			Action:       audit.ActionUserAutoDeletedFromAuth,
			TargetUserID: identity.UserID,
			PerformedBy:  "system",
			Details:      map[string]any{"email": identity.Email, "source": TaskIdentitySweep},
		})
	}

	logger.Info("sweep complete", slog.Int("orphans", len(orphans)), slog.Int("removed", removed))
	return nil
}

func (j *IdentitySweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskIdentitySweep))
	}
	return slog.Default().With(slog.String("job", TaskIdentitySweep))
}
