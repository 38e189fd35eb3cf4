package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/common"
	"github.com/dkovalev/lotkeeper/internal/dbx"
)

// SQLiteRepository implements Repository over *sql.DB; Add, main-voice
// replacement and RenumberPhotos own transactions.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const mediaColumns = `id, lot_id, type, idx, created_at, uploaded, mime, bytes_size,
	width, height, duration_ms, remote_path, object_key, etag, needs_sync`

func scanMedia(row interface{ Scan(dest ...any) error }) (*models.MediaItem, error) {
	m := &models.MediaItem{}
	err := row.Scan(&m.ID, &m.LotID, &m.Type, &m.Index, &m.CreatedAt, &m.Uploaded, &m.Mime, &m.BytesSize,
		&m.Width, &m.Height, &m.DurationMS, &m.RemotePath, &m.ObjectKey, &m.ETag, &m.NeedsSync)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Add inserts the item row and its blob row in one transaction. For a main
// voice note any previous one (item and blob) is deleted in the same
// transaction; for capped voice types the cap is checked inside the
// transaction so concurrent adds cannot overshoot it.
func (r *SQLiteRepository) Add(ctx context.Context, item *models.MediaItem, data []byte) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		switch item.Type {
		case models.MediaTypeMainVoice:
			if err := deleteByLotAndType(ctx, tx, item.LotID, models.MediaTypeMainVoice); err != nil {
				return err
			}
		case models.MediaTypeDimensionVoice, models.MediaTypeKeywordVoice:
			limit := models.MaxDimensionVoices
			if item.Type == models.MediaTypeKeywordVoice {
				limit = models.MaxKeywordVoices
			}
			var n int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM media_items WHERE lot_id=? AND type=?`, item.LotID, item.Type).Scan(&n); err != nil {
				return fmt.Errorf("failed to count media: %w", err)
			}
			if n >= limit {
				return fmt.Errorf("%w: %s (max %d)", ErrCapExceeded, item.Type, limit)
			}
		}

		var maxIdx sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(idx) FROM media_items WHERE lot_id=? AND type=?`, item.LotID, item.Type).Scan(&maxIdx); err != nil {
			return fmt.Errorf("failed to find max index: %w", err)
		}
		item.Index = int(maxIdx.Int64) + 1
		item.BytesSize = int64(len(data))

		_, err := tx.ExecContext(ctx, `
			INSERT INTO media_items (id, lot_id, type, idx, created_at, uploaded, mime, bytes_size,
				width, height, duration_ms, remote_path, object_key, etag, needs_sync)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.LotID, item.Type, item.Index, item.CreatedAt, item.Uploaded, item.Mime, item.BytesSize,
			item.Width, item.Height, item.DurationMS, item.RemotePath, item.ObjectKey, item.ETag, item.NeedsSync)
		if err != nil {
			return fmt.Errorf("failed to insert media item: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO media_blobs (id, data, mime_type, size) VALUES (?, ?, ?, ?)`,
			item.ID, data, item.Mime, item.BytesSize)
		if err != nil {
			return fmt.Errorf("failed to insert media blob: %w", err)
		}
		return nil
	})
}

func deleteByLotAndType(ctx context.Context, tx dbx.DBTX, lotID string, t models.MediaType) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM media_blobs WHERE id IN
			(SELECT id FROM media_items WHERE lot_id=? AND type=?)`, lotID, t)
	if err != nil {
		return fmt.Errorf("failed to delete replaced blob: %w", err)
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM media_items WHERE lot_id=? AND type=?`, lotID, t)
	if err != nil {
		return fmt.Errorf("failed to delete replaced item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.MediaItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE id=?`, id)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media item: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) GetByLot(ctx context.Context, lotID string) ([]models.MediaItem, error) {
	return r.selectMany(ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE lot_id=? ORDER BY type, idx`, lotID)
}

func (r *SQLiteRepository) GetByLotAndType(ctx context.Context, lotID string, t models.MediaType) ([]models.MediaItem, error) {
	return r.selectMany(ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE lot_id=? AND type=? ORDER BY idx`, lotID, t)
}

func (r *SQLiteRepository) CountByLotAndType(ctx context.Context, lotID string, t models.MediaType) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media_items WHERE lot_id=? AND type=?`, lotID, t).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) GetAllPendingUpload(ctx context.Context) ([]*models.MediaItem, error) {
	items, err := r.selectMany(ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE uploaded=0 ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return toPtrs(items), nil
}

func (r *SQLiteRepository) MarkUploaded(ctx context.Context, id string, res UploadResult) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE media_items
		SET uploaded=1, remote_path=?, object_key=?, etag=?, width=?, height=?, duration_ms=?, needs_sync=1
		WHERE id=?`,
		res.RemotePath, res.ObjectKey, res.ETag, res.Width, res.Height, res.DurationMS, id)
	if err != nil {
		return fmt.Errorf("failed to mark uploaded: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func (r *SQLiteRepository) GetNeedingSync(ctx context.Context) ([]*models.MediaItem, error) {
	items, err := r.selectMany(ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE needs_sync=1`)
	if err != nil {
		return nil, err
	}
	return toPtrs(items), nil
}

func (r *SQLiteRepository) ClearNeedsSync(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE media_items SET needs_sync=0 WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to clear needs_sync: %w", err)
	}
	return nil
}

// RenumberPhotos validates that orderedIDs is exactly the lot's current photo
// set, then rewrites idx to the list order. Runs as one transaction so a
// failed reorder leaves the previous contiguous ordering intact.
func (r *SQLiteRepository) RenumberPhotos(ctx context.Context, lotID string, orderedIDs []string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM media_items WHERE lot_id=? AND type=?`, lotID, models.MediaTypePhoto)
		if err != nil {
			return fmt.Errorf("failed to select photos: %w", err)
		}
		existing := make(map[string]struct{})
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			existing[id] = struct{}{}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if len(existing) != len(orderedIDs) {
			return fmt.Errorf("photo list mismatch: have %d, got %d", len(existing), len(orderedIDs))
		}
		for _, id := range orderedIDs {
			if _, ok := existing[id]; !ok {
				return fmt.Errorf("photo %s does not belong to lot %s", id, lotID)
			}
		}

		for i, id := range orderedIDs {
			if _, err := tx.ExecContext(ctx,
				`UPDATE media_items SET idx=? WHERE id=?`, i+1, id); err != nil {
				return fmt.Errorf("failed to renumber photo %s: %w", id, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) selectMany(ctx context.Context, query string, args ...any) ([]models.MediaItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select media items: %w", err)
	}
	defer rows.Close()

	var result []models.MediaItem
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func toPtrs(items []models.MediaItem) []*models.MediaItem {
	out := make([]*models.MediaItem, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return out
}
