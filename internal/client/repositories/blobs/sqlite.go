package blobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/common"
	"github.com/dkovalev/lotkeeper/internal/dbx"
)

// SQLiteRepository implements Repository over *sql.DB; the coupled delete
// owns its transaction.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, id string, data []byte, mimeType string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media_blobs (id, data, mime_type, size) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data,
			mime_type = excluded.mime_type,
			size = excluded.size
	`, id, data, mimeType, len(data))
	if err != nil {
		return fmt.Errorf("failed to save blob: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.MediaBlob, error) {
	b := &models.MediaBlob{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, data, mime_type, size FROM media_blobs WHERE id=?`, id).
		Scan(&b.ID, &b.Data, &b.MimeType, &b.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}
	return b, nil
}

// DeleteMediaCompletely deletes the item row and the blob row together.
// Either both rows are gone after this call or neither is.
func (r *SQLiteRepository) DeleteMediaCompletely(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM media_blobs WHERE id=?`, id); err != nil {
			return fmt.Errorf("failed to delete blob: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM media_items WHERE id=?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete media item: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if ra != 1 {
			return fmt.Errorf("wrong rows affected count: %d", ra)
		}
		return nil
	})
}
