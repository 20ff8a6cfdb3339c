package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository provides PostgreSQL backed access to audit_logs.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// TimelineWindow returns a window of audit entries, newest first.
func (r *PGRepository) TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Entry, error) {
	query := `
		SELECT id, action, target_user_id, performed_by, details, occurred_at
		FROM audit_logs
		WHERE ($1::timestamptz IS NULL OR occurred_at >= $1)
		  AND ($2::timestamptz IS NULL OR occurred_at <= $2)
		  AND ($3::text IS NULL OR action = $3)
		  AND ($4::text IS NULL OR performed_by = $4)
		ORDER BY occurred_at DESC
		OFFSET $5 LIMIT $6`

	rows, err := r.pool.Query(ctx, query,
		nullableTime(filters.From), nullableTime(filters.To),
		nullableText(filters.Action), nullableText(filters.Actor),
		offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.TargetUserID, &entry.PerformedBy, &details, &entry.At); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &entry.Details)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullableText(value string) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
