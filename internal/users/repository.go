package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spoirmm/spoirmm/internal/platform/db"
	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/shared"
)

// RepositoryPort defines persistence operations for user profiles.
type RepositoryPort interface {
	Create(ctx context.Context, p Profile) error
	Update(ctx context.Context, p Profile) error
	SetActive(ctx context.Context, userID string, active bool) error
	Delete(ctx context.Context, userID string) error
	FindByID(ctx context.Context, userID string) (*Profile, error)
	List(ctx context.Context, includeInactive bool) ([]Profile, error)
}

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const profileColumns = `id, email, display_name, COALESCE(organization, ''), is_active,
	COALESCE(profile_role, ''), COALESCE(top_level_role, ''), can_manage_users,
	COALESCE(roles, '{}'), COALESCE(project_ids, '{}'), COALESCE(created_by, ''), last_login_at, created_at, updated_at`

// Create inserts a new profile. A duplicate email maps to httpx.ErrDuplicate.
func (r *PGRepository) Create(ctx context.Context, p Profile) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, display_name, organization, is_active, roles, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7, $7)`,
		p.ID, p.Email, p.DisplayName, p.Organization, p.Roles, p.CreatedBy, now)
	if db.IsUniqueViolation(err) {
		return httpx.ErrDuplicate
	}
	return err
}

// Update replaces the mutable profile fields. The legacy role columns are
// cleared so the roles array becomes the single stored representation.
func (r *PGRepository) Update(ctx context.Context, p Profile) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET display_name = $2, organization = $3, roles = $4, project_ids = $5,
		    profile_role = NULL, top_level_role = NULL, can_manage_users = NULL,
		    updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.DisplayName, p.Organization, p.Roles, p.ProjectIDs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetActive flips the active flag.
func (r *PGRepository) SetActive(ctx context.Context, userID string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the profile row. Deletion is terminal; the auth identity is
// removed separately and reconciled by the cleanup jobs if that fails.
func (r *PGRepository) Delete(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID fetches a profile by id.
func (r *PGRepository) FindByID(ctx context.Context, userID string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, userID)
	return scanProfile(row)
}

// List returns profiles ordered by display name.
func (r *PGRepository) List(ctx context.Context, includeInactive bool) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+profileColumns+` FROM users
		WHERE is_active OR $1
		ORDER BY display_name`, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Organization, &p.IsActive,
		&p.ProfileRole, &p.TopLevelRole, &p.CanManageUsers,
		&p.Roles, &p.ProjectIDs, &p.CreatedBy, &p.LastLoginAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ RepositoryPort = (*PGRepository)(nil)
