package store

import (
	"context"
	"testing"
	"time"

	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesAndWires(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	// every migrated table must be reachable through its repository
	require.NoError(t, s.Auctions.CreateOrUpdate(ctx, &models.Auction{
		ID: "a1", Name: "Spring", CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.Lots.Create(ctx, &models.Lot{
		ID: "l1", Number: "0001", AuctionID: "a1",
		Status: models.LotStatusDraft, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.Media.Add(ctx, &models.MediaItem{
		ID: "m1", LotID: "l1", Type: models.MediaTypePhoto,
		CreatedAt: time.Now().UTC(), Mime: "image/jpeg",
	}, []byte("img")))
	require.NoError(t, s.Meta.Set(ctx, "selectedAuction", []byte("a1")))

	b, err := s.Blobs.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), b.Data)
}

func TestOpen_Reentrant(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dsn := dir + "/client.db"

	s1, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// reopening an already-migrated database is a no-op, not an error
	s2, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}
