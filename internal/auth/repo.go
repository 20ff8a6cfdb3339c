package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spoirmm/spoirmm/internal/shared"
)

// Repository defines persistence operations for authentication identities.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindByUserID(ctx context.Context, userID string) (*Identity, error)
	FindBySetupToken(ctx context.Context, token string) (*Identity, error)
	Create(ctx context.Context, identity Identity) error
	SetPassword(ctx context.Context, userID, passwordHash string) error
	RecordLogin(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
	ListOrphaned(ctx context.Context, limit int) ([]Identity, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const identityColumns = `a.user_id, a.email, a.password_hash, COALESCE(a.setup_token, ''), COALESCE(u.is_active, FALSE), a.created_at, a.updated_at`

const identityFrom = ` FROM auth_identities a LEFT JOIN users u ON u.id = a.user_id `

// FindByEmail fetches an identity by email, joined with the profile's active
// flag.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+identityFrom+`WHERE a.email = $1`, email)
	return scanIdentity(row)
}

// FindByUserID fetches an identity by its backing user id.
func (r *PGRepository) FindByUserID(ctx context.Context, userID string) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+identityFrom+`WHERE a.user_id = $1`, userID)
	return scanIdentity(row)
}

// FindBySetupToken fetches an identity by its credential-setup token.
func (r *PGRepository) FindBySetupToken(ctx context.Context, token string) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+identityFrom+`WHERE a.setup_token = $1`, token)
	return scanIdentity(row)
}

// Create inserts a new identity.
func (r *PGRepository) Create(ctx context.Context, identity Identity) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_identities (user_id, email, password_hash, setup_token, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $5)`,
		identity.UserID, identity.Email, identity.PasswordHash, identity.SetupToken, now)
	return err
}

// SetPassword stores a new password hash and clears any setup token.
func (r *PGRepository) SetPassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE auth_identities SET password_hash = $2, setup_token = NULL, updated_at = NOW()
		WHERE user_id = $1`, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RecordLogin stamps the profile's last successful login.
func (r *PGRepository) RecordLogin(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	return err
}

// Delete removes an identity. Deleting an identity that is already gone is
// not an error; the reconciliation jobs retry blindly.
func (r *PGRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_identities WHERE user_id = $1`, userID)
	return err
}

// ListOrphaned returns identities whose profile row no longer exists.
func (r *PGRepository) ListOrphaned(ctx context.Context, limit int) ([]Identity, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+identityColumns+identityFrom+`WHERE u.id IS NULL ORDER BY a.created_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		var identity Identity
		if err := rows.Scan(&identity.UserID, &identity.Email, &identity.PasswordHash, &identity.SetupToken, &identity.IsActive, &identity.CreatedAt, &identity.UpdatedAt); err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

func scanIdentity(row pgx.Row) (*Identity, error) {
	var identity Identity
	err := row.Scan(&identity.UserID, &identity.Email, &identity.PasswordHash, &identity.SetupToken, &identity.IsActive, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &identity, nil
}

var _ Repository = (*PGRepository)(nil)
