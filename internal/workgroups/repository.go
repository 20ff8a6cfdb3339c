package workgroups

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spoirmm/spoirmm/internal/shared"
)

// RepositoryPort defines persistence operations for working groups.
type RepositoryPort interface {
	CreateGroup(ctx context.Context, g Group) error
	UpdateGroup(ctx context.Context, g Group) error
	DeleteGroup(ctx context.Context, groupID string) error
	FindGroup(ctx context.Context, groupID string) (*Group, error)
	ListGroups(ctx context.Context, projectID string) ([]Group, error)
	CreateMeeting(ctx context.Context, m Meeting) error
	ListMeetings(ctx context.Context, groupID string) ([]Meeting, error)
}

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) CreateGroup(ctx context.Context, g Group) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO workgroups (id, project_id, name, member_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		g.ID, g.ProjectID, g.Name, g.MemberIDs, now)
	return err
}

func (r *PGRepository) UpdateGroup(ctx context.Context, g Group) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE workgroups SET name = $2, member_ids = $3, updated_at = NOW() WHERE id = $1`,
		g.ID, g.Name, g.MemberIDs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) DeleteGroup(ctx context.Context, groupID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workgroups WHERE id = $1`, groupID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) FindGroup(ctx context.Context, groupID string) (*Group, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, project_id, name, COALESCE(member_ids, '{}'), created_at, updated_at
		FROM workgroups WHERE id = $1`, groupID)
	var g Group
	err := row.Scan(&g.ID, &g.ProjectID, &g.Name, &g.MemberIDs, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *PGRepository) ListGroups(ctx context.Context, projectID string) ([]Group, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, name, COALESCE(member_ids, '{}'), created_at, updated_at
		FROM workgroups WHERE project_id = $1 ORDER BY name`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.ProjectID, &g.Name, &g.MemberIDs, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *PGRepository) CreateMeeting(ctx context.Context, m Meeting) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO workgroup_meetings (id, group_id, starts_at, duration_minutes, agenda, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
		m.ID, m.GroupID, m.StartsAt, m.DurationMinutes, m.Agenda, time.Now().UTC())
	return err
}

func (r *PGRepository) ListMeetings(ctx context.Context, groupID string) ([]Meeting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, group_id, starts_at, duration_minutes, COALESCE(agenda, ''), created_at
		FROM workgroup_meetings WHERE group_id = $1 ORDER BY starts_at`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		var m Meeting
		if err := rows.Scan(&m.ID, &m.GroupID, &m.StartsAt, &m.DurationMinutes, &m.Agenda, &m.CreatedAt); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

var _ RepositoryPort = (*PGRepository)(nil)
