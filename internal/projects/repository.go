package projects

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spoirmm/spoirmm/internal/shared"
)

// RepositoryPort defines persistence operations for projects.
type RepositoryPort interface {
	Create(ctx context.Context, p Project) error
	Update(ctx context.Context, p Project) error
	Delete(ctx context.Context, projectID string) error
	FindByID(ctx context.Context, projectID string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	CountPlayers(ctx context.Context, projectID string) (int64, error)
	CountOpenIssues(ctx context.Context, projectID string) (int64, error)
	CountRisks(ctx context.Context, projectID string) (int64, error)
	CountWorkgroups(ctx context.Context, projectID string) (int64, error)
}

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const projectColumns = `id, title, organization, sponsor_id, coordinator_id, status,
	start_date, end_date, created_by, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, p Project) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO projects (id, title, organization, sponsor_id, coordinator_id, status, start_date, end_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		p.ID, p.Title, p.Organization, p.SponsorID, p.CoordinatorID, p.Status,
		p.StartDate, p.EndDate, p.CreatedBy, now)
	return err
}

func (r *PGRepository) Update(ctx context.Context, p Project) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET title = $2, organization = $3, sponsor_id = $4, coordinator_id = $5,
		    status = $6, start_date = $7, end_date = $8, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Title, p.Organization, p.SponsorID, p.CoordinatorID,
		p.Status, p.StartDate, p.EndDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, projectID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, projectID string) (*Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, projectID)
	return scanProject(row)
}

func (r *PGRepository) List(ctx context.Context) ([]Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *PGRepository) CountPlayers(ctx context.Context, projectID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM players WHERE project_id = $1`, projectID)
}

func (r *PGRepository) CountOpenIssues(ctx context.Context, projectID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM issues WHERE project_id = $1 AND status NOT IN ('converted', 'closed')`, projectID)
}

func (r *PGRepository) CountRisks(ctx context.Context, projectID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM risks WHERE project_id = $1`, projectID)
}

func (r *PGRepository) CountWorkgroups(ctx context.Context, projectID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM workgroups WHERE project_id = $1`, projectID)
}

func (r *PGRepository) count(ctx context.Context, query, projectID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, query, projectID).Scan(&n)
	return n, err
}

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Title, &p.Organization, &p.SponsorID, &p.CoordinatorID,
		&p.Status, &p.StartDate, &p.EndDate, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ RepositoryPort = (*PGRepository)(nil)
