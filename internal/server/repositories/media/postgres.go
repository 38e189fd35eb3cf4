// Package media persists the server-side media metadata mirror. Bytes never
// pass through here; they live in object storage under object_key.
package media

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkovalev/lotkeeper/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, m *models.MediaItem) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, m *models.MediaItem) error {
	query := `
		INSERT INTO media_items (id, lot_id, type, idx, created_at, uploaded, mime,
			bytes_size, width, height, duration_ms, remote_path, object_key, etag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			idx = EXCLUDED.idx,
			uploaded = EXCLUDED.uploaded,
			mime = EXCLUDED.mime,
			bytes_size = EXCLUDED.bytes_size,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			duration_ms = EXCLUDED.duration_ms,
			remote_path = EXCLUDED.remote_path,
			object_key = EXCLUDED.object_key,
			etag = EXCLUDED.etag
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.LotID, m.Type, m.Index, m.CreatedAt, m.Uploaded, m.Mime,
		m.BytesSize, m.Width, m.Height, m.DurationMS, m.RemotePath, m.ObjectKey, m.ETag)
	if err != nil {
		return fmt.Errorf("failed to upsert media item: %w", err)
	}
	return nil
}
