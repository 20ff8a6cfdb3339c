package players

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spoirmm/spoirmm/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const playerColumns = `id, project_id, name, player_type, player_role, entity_nature, relationship, notes, risk_refs, created_by, created_at, updated_at`

// ListByProject returns all players of a project ordered by name.
func (r *Repository) ListByProject(ctx context.Context, projectID string) ([]Player, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+playerColumns+` FROM players WHERE project_id = $1 ORDER BY name`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Get fetches a player by ID.
func (r *Repository) Get(ctx context.Context, id string) (*Player, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new player record.
func (r *Repository) Create(ctx context.Context, p Player) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO players (id, project_id, name, player_type, player_role, entity_nature, relationship, notes, risk_refs, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.ProjectID, p.Name, p.Type, p.Role, p.Nature, p.Relationship, p.Notes, p.RiskRefs, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	return err
}

// Update rewrites a player record.
func (r *Repository) Update(ctx context.Context, p Player) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE players
		SET name = $2, player_type = $3, player_role = $4, entity_nature = $5, relationship = $6, notes = $7, risk_refs = $8, updated_at = $9
		WHERE id = $1`,
		p.ID, p.Name, p.Type, p.Role, p.Nature, p.Relationship, p.Notes, p.RiskRefs, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a player record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanPlayer(row pgx.Row) (Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Type, &p.Role, &p.Nature, &p.Relationship, &p.Notes, &p.RiskRefs, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
