package lots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/common"
	"github.com/dkovalev/lotkeeper/internal/dbx"
)

// SQLiteRepository implements Repository over *sql.DB. It takes the full
// handle rather than a DBTX because DeleteIfEmpty owns a transaction.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const lotColumns = `id, number, auction_id, status, created_at, description, shared_at, synced_at`

func scanLot(row interface{ Scan(dest ...any) error }) (*models.Lot, error) {
	l := &models.Lot{}
	var sharedAt, syncedAt sql.NullTime
	err := row.Scan(&l.ID, &l.Number, &l.AuctionID, &l.Status, &l.CreatedAt, &l.Description, &sharedAt, &syncedAt)
	if err != nil {
		return nil, err
	}
	if sharedAt.Valid {
		l.SharedAt = &sharedAt.Time
	}
	if syncedAt.Valid {
		l.SyncedAt = &syncedAt.Time
	}
	return l, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, lot *models.Lot) error {
	query := `INSERT INTO lots (id, number, auction_id, status, created_at, description, shared_at, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		lot.ID, lot.Number, lot.AuctionID, lot.Status, lot.CreatedAt, lot.Description, lot.SharedAt, lot.SyncedAt)
	if err != nil {
		return fmt.Errorf("failed to insert lot: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Lot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM lots WHERE id=?`, id)
	l, err := scanLot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}
	return l, nil
}

func (r *SQLiteRepository) GetByAuction(ctx context.Context, auctionID string) ([]models.Lot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+lotColumns+` FROM lots WHERE auction_id=? ORDER BY number`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select lots: %w", err)
	}
	defer rows.Close()

	var result []models.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status models.LotStatus) error {
	return r.execOne(ctx, `UPDATE lots SET status=? WHERE id=?`, status, id)
}

func (r *SQLiteRepository) SetDescription(ctx context.Context, id string, description string) error {
	return r.execOne(ctx, `UPDATE lots SET description=? WHERE id=?`, description, id)
}

func (r *SQLiteRepository) MarkShared(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `UPDATE lots SET shared_at=? WHERE id=?`, at, id)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `UPDATE lots SET synced_at=? WHERE id=?`, at, id)
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]*models.Lot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+lotColumns+` FROM lots WHERE synced_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsynced lots: %w", err)
	}
	defer rows.Close()

	var result []*models.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) CountByAuction(ctx context.Context, auctionID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lots WHERE auction_id=?`, auctionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count lots: %w", err)
	}
	return n, nil
}

// DeleteIfEmpty checks for attached media and deletes the lot inside one
// transaction, so a concurrent media insert cannot race the delete.
func (r *SQLiteRepository) DeleteIfEmpty(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_items WHERE lot_id=?`, id).Scan(&n); err != nil {
			return fmt.Errorf("failed to count media: %w", err)
		}
		if n > 0 {
			return nil
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM lots WHERE id=?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete lot: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = ra == 1
		return nil
	})
	return deleted, err
}

func (r *SQLiteRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
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
