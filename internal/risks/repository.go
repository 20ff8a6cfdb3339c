package risks

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spoirmm/spoirmm/internal/shared"
)

// RepositoryPort defines persistence operations for the risk register.
type RepositoryPort interface {
	Create(ctx context.Context, risk Risk) error
	Update(ctx context.Context, risk Risk) error
	Delete(ctx context.Context, riskID string) error
	FindByID(ctx context.Context, riskID string) (*Risk, error)
	ListByProject(ctx context.Context, projectID string) ([]Risk, error)
}

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const riskColumns = `id, project_id, statement, likelihood, consequence, score, band,
	owner_id, COALESCE(treatment, ''), status, COALESCE(issue_id, ''), created_by, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, risk Risk) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO risks (id, project_id, statement, likelihood, consequence, score, band, owner_id, treatment, status, issue_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, NULLIF($11, ''), $12, $13, $13)`,
		risk.ID, risk.ProjectID, risk.Statement, risk.Likelihood, risk.Consequence,
		risk.Score, risk.Band, risk.OwnerID, risk.Treatment, risk.Status, risk.IssueID,
		risk.CreatedBy, now)
	return err
}

func (r *PGRepository) Update(ctx context.Context, risk Risk) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE risks
		SET statement = $2, likelihood = $3, consequence = $4, score = $5, band = $6,
		    owner_id = $7, treatment = NULLIF($8, ''), status = $9, updated_at = NOW()
		WHERE id = $1`,
		risk.ID, risk.Statement, risk.Likelihood, risk.Consequence, risk.Score,
		risk.Band, risk.OwnerID, risk.Treatment, risk.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, riskID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM risks WHERE id = $1`, riskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, riskID string) (*Risk, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+riskColumns+` FROM risks WHERE id = $1`, riskID)
	return scanRisk(row)
}

func (r *PGRepository) ListByProject(ctx context.Context, projectID string) ([]Risk, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+riskColumns+` FROM risks WHERE project_id = $1 ORDER BY score DESC, created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var risks []Risk
	for rows.Next() {
		risk, err := scanRisk(rows)
		if err != nil {
			return nil, err
		}
		risks = append(risks, *risk)
	}
	return risks, rows.Err()
}

func scanRisk(row pgx.Row) (*Risk, error) {
	var risk Risk
	err := row.Scan(&risk.ID, &risk.ProjectID, &risk.Statement, &risk.Likelihood,
		&risk.Consequence, &risk.Score, &risk.Band, &risk.OwnerID, &risk.Treatment,
		&risk.Status, &risk.IssueID, &risk.CreatedBy, &risk.CreatedAt, &risk.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &risk, nil
}

var _ RepositoryPort = (*PGRepository)(nil)
