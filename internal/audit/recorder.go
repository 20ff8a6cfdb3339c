package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder writes entries into audit_logs.
type Recorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRecorder returns a new Recorder.
func NewRecorder(pool *pgxpool.Pool, logger *slog.Logger) *Recorder {
	return &Recorder{pool: pool, logger: logger}
}

// Record persists the log entry.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if r == nil || r.pool == nil {
		return errors.New("audit recorder not initialised")
	}
	if entry.Action == "" || entry.TargetUserID == "" {
		return errors.New("audit entry requires action and target")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, action, target_user_id, performed_by, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Action, entry.TargetUserID, entry.PerformedBy, detailsJSON, entry.At)
	return err
}

// RecordBestEffort writes an entry and downgrades any failure to a warning.
// Audit writes never block or fail the operation being audited.
func (r *Recorder) RecordBestEffort(ctx context.Context, entry Entry) {
	if err := r.Record(ctx, entry); err != nil {
		if r != nil && r.logger != nil {
			r.logger.Warn("audit write failed",
				slog.String("action", entry.Action),
				slog.String("target", entry.TargetUserID),
				slog.Any("error", err))
		}
	}
}
