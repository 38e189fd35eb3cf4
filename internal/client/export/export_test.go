package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobs map[string][]byte

func (f fakeBlobs) Get(ctx context.Context, id string) (*models.MediaBlob, error) {
	data, ok := f[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &models.MediaBlob{ID: id, Data: data, Size: int64(len(data))}, nil
}

func testAuction() *models.Auction {
	return &models.Auction{ID: "a1", Name: "Spring Sale", CreatedAt: time.Now().UTC()}
}

func TestBuildCSV_ColumnsAndRows(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lots := []models.Lot{
		{ID: "l1", Number: "0001", AuctionID: "a1", Status: models.LotStatusComplete, CreatedAt: created},
		{ID: "l2", Number: "0002", AuctionID: "a1", Status: models.LotStatusDraft, CreatedAt: created},
	}
	mediaByLot := map[string][]models.MediaItem{
		"l1": {
			{ID: "m1", LotID: "l1", Type: models.MediaTypePhoto, Index: 1, Mime: "image/jpeg",
				Uploaded: true, RemotePath: "u/u1/a/a1/l/l1/x.jpg"},
			{ID: "m2", LotID: "l1", Type: models.MediaTypeMainVoice, Index: 1, Mime: "audio/wav"},
		},
	}

	text, err := BuildCSV(testAuction(), lots, mediaByLot)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 2 media rows + 1 empty lot row

	assert.Equal(t, []string{
		"auction_id", "auction_name", "lot_id", "lot_number", "status",
		"created_at", "media_type", "media_index", "filename", "uploaded",
		"remote_path",
	}, records[0])

	assert.Equal(t, []string{
		"a1", "Spring Sale", "l1", "0001", "complete",
		"2026-03-01T10:00:00Z", "photo", "1", "0001_photo_1.jpg", "true",
		"u/u1/a/a1/l/l1/x.jpg",
	}, records[1])

	// voice note row
	assert.Equal(t, "0001_mainVoice_1.wav", records[2][8])

	// media-less lot still appears, with empty media columns
	assert.Equal(t, "l2", records[3][2])
	assert.Equal(t, "", records[3][6])
}

func TestBuildZip_LayoutAndProgress(t *testing.T) {
	blobs := fakeBlobs{"m1": []byte("photo bytes"), "m2": []byte("voice bytes")}
	entries := []Entry{
		{LotNumber: "0001", Filename: "0001_photo_1.jpg", MediaID: "m1"},
		{LotNumber: "0001", Filename: "0001_mainVoice_1.wav", MediaID: "m2"},
	}

	var percents []int
	data, errs := BuildZip(context.Background(), blobs, entries, "csv,here\n", func(p int) {
		percents = append(percents, p)
	})
	require.Empty(t, errs)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)

	// manifest first, media under per-lot folders
	assert.Equal(t, "export.csv", zr.File[0].Name)
	assert.Equal(t, "media/0001/0001_photo_1.jpg", zr.File[1].Name)
	assert.Equal(t, "media/0001/0001_mainVoice_1.wav", zr.File[2].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, []byte("photo bytes"), got)

	// monotone, ends at 100, csv counted as an entry
	require.Len(t, percents, 3)
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
	assert.Equal(t, 100, percents[len(percents)-1])
}

func TestBuildZip_ToleratesMissingBlob(t *testing.T) {
	blobs := fakeBlobs{"m1": []byte("photo bytes")}
	entries := []Entry{
		{LotNumber: "0001", Filename: "0001_photo_1.jpg", MediaID: "m1"},
		{LotNumber: "0002", Filename: "0002_photo_1.jpg", MediaID: "gone"},
	}

	data, errs := BuildZip(context.Background(), blobs, entries, "csv\n", nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "media/0002/0002_photo_1.jpg")

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2, "archive ships without the broken entry")
}
