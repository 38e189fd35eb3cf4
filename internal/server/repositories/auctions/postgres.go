// Package auctions persists the server-side auction mirror. Writes are
// idempotent upserts; the client may replay them freely.
package auctions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkovalev/lotkeeper/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, a *models.Auction) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, a *models.Auction) error {
	query := `
		INSERT INTO auctions (id, name, created_at, archived)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			archived = EXCLUDED.archived
	`
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.Name, a.CreatedAt, a.Archived); err != nil {
		return fmt.Errorf("failed to upsert auction: %w", err)
	}
	return nil
}
