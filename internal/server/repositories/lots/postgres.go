// Package lots persists the server-side lot mirror via idempotent upserts.
package lots

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkovalev/lotkeeper/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, l *models.Lot) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, l *models.Lot) error {
	query := `
		INSERT INTO lots (id, number, auction_id, status, created_at, description, shared_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			description = EXCLUDED.description,
			shared_at = EXCLUDED.shared_at
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.Number, l.AuctionID, l.Status, l.CreatedAt, l.Description, l.SharedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert lot: %w", err)
	}
	return nil
}
