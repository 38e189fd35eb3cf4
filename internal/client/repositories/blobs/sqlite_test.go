package blobs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dkovalev/lotkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE media_items (
  id TEXT PRIMARY KEY,
  lot_id TEXT NOT NULL,
  type TEXT NOT NULL,
  idx INTEGER NOT NULL
);
CREATE TABLE media_blobs (
  id TEXT PRIMARY KEY,
  data BLOB NOT NULL,
  mime_type TEXT NOT NULL DEFAULT '',
  size INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func TestSaveGet_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "m1", []byte("first"), "audio/wav"))
	require.NoError(t, r.Save(ctx, "m1", []byte("second take"), "audio/wav"))

	b, err := r.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []byte("second take"), b.Data)
	assert.Equal(t, "audio/wav", b.MimeType)
	assert.Equal(t, int64(11), b.Size)
}

func TestGet_Missing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Get(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteMediaCompletely_RemovesBothRows(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO media_items (id, lot_id, type, idx) VALUES ('m1', 'l1', 'photo', 1)`)
	require.NoError(t, err)
	require.NoError(t, r.Save(ctx, "m1", []byte("img"), "image/jpeg"))

	require.NoError(t, r.DeleteMediaCompletely(ctx, "m1"))

	var items, blobs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM media_items`).Scan(&items))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM media_blobs`).Scan(&blobs))
	assert.Zero(t, items)
	assert.Zero(t, blobs)
}

func TestDeleteMediaCompletely_MissingItemRollsBack(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	// blob without item: delete must fail and leave the blob untouched,
	// so the inconsistency stays visible instead of being half-cleaned
	require.NoError(t, r.Save(ctx, "orphan", []byte("img"), "image/jpeg"))

	require.Error(t, r.DeleteMediaCompletely(ctx, "orphan"))

	var blobs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM media_blobs`).Scan(&blobs))
	assert.Equal(t, 1, blobs)
}
