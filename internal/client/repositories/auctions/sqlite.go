package auctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/common"
	"github.com/dkovalev/lotkeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrUpdate upserts an auction by id.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, a *models.Auction) error {
	query := `INSERT INTO auctions (id, name, created_at, archived)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				archived = excluded.archived
	`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.Name, a.CreatedAt, a.Archived)
	if err != nil {
		return fmt.Errorf("failed to upsert auction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Auction, error) {
	query := `SELECT id, name, created_at, archived FROM auctions WHERE id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	a := &models.Auction{}
	err := row.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.Archived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, includeArchived bool) ([]models.Auction, error) {
	query := `SELECT id, name, created_at, archived FROM auctions WHERE archived=0 ORDER BY created_at`
	if includeArchived {
		query = `SELECT id, name, created_at, archived FROM auctions ORDER BY created_at`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select auctions: %w", err)
	}
	defer rows.Close()

	var result []models.Auction
	for rows.Next() {
		var a models.Auction
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.Archived); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Archive expects exactly one live row to be affected.
func (r *SQLiteRepository) Archive(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE auctions SET archived=1 WHERE id=? AND archived=0`, id)
	if err != nil {
		return fmt.Errorf("failed to archive auction: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auctions WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete auction: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}
