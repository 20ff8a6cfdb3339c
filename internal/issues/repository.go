package issues

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spoirmm/spoirmm/internal/shared"
)

// RepositoryPort defines persistence operations for the issue register.
type RepositoryPort interface {
	Create(ctx context.Context, issue Issue) error
	Update(ctx context.Context, issue Issue) error
	Delete(ctx context.Context, issueID string) error
	FindByID(ctx context.Context, issueID string) (*Issue, error)
	ListByProject(ctx context.Context, projectID string) ([]Issue, error)
}

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const issueColumns = `id, project_id, description, raised_by, status, COALESCE(risk_id, ''), created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, issue Issue) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO issues (id, project_id, description, raised_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		issue.ID, issue.ProjectID, issue.Description, issue.RaisedBy, issue.Status, now)
	return err
}

func (r *PGRepository) Update(ctx context.Context, issue Issue) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE issues
		SET description = $2, status = $3, risk_id = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1`,
		issue.ID, issue.Description, issue.Status, issue.RiskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, issueID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id = $1`, issueID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, issueID string) (*Issue, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, issueID)
	return scanIssue(row)
}

func (r *PGRepository) ListByProject(ctx context.Context, projectID string) ([]Issue, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+issueColumns+` FROM issues WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}
	return issues, rows.Err()
}

func scanIssue(row pgx.Row) (*Issue, error) {
	var issue Issue
	err := row.Scan(&issue.ID, &issue.ProjectID, &issue.Description, &issue.RaisedBy,
		&issue.Status, &issue.RiskID, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &issue, nil
}

var _ RepositoryPort = (*PGRepository)(nil)
