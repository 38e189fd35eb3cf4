package upload

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	wire "github.com/dkovalev/lotkeeper/internal/api"
	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/client/store"
	"github.com/dkovalev/lotkeeper/internal/common"
	"github.com/dkovalev/lotkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigner struct {
	offline   bool
	existsAll bool
	url       string
	signs     atomic.Int64
}

func (f *fakeSigner) Ping(ctx context.Context) error {
	if f.offline {
		return common.ErrOffline
	}
	return nil
}

func (f *fakeSigner) SignUpload(ctx context.Context, req *wire.SignUploadRequest) (*wire.SignUploadResponse, error) {
	f.signs.Add(1)
	if f.existsAll {
		return &wire.SignUploadResponse{Exists: true, Key: req.ObjectKey, ETag: `"cached"`}, nil
	}
	return &wire.SignUploadResponse{Key: req.ObjectKey, URL: f.url}, nil
}

func setup(t *testing.T) (*store.Store, logging.Logger) {
	t.Helper()
	s, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return s, log
}

func addLotWithPhoto(t *testing.T, s *store.Store, lotID, mediaID string) {
	t.Helper()
	ctx := context.Background()
	_ = s.Auctions.CreateOrUpdate(ctx, &models.Auction{ID: "a1", Name: "Spring", CreatedAt: time.Now().UTC()})
	if _, err := s.Lots.GetByID(ctx, lotID); err != nil {
		require.NoError(t, s.Lots.Create(ctx, &models.Lot{
			ID: lotID, Number: "0001", AuctionID: "a1",
			Status: models.LotStatusDraft, CreatedAt: time.Now().UTC(),
		}))
	}
	require.NoError(t, s.Media.Add(ctx, &models.MediaItem{
		ID: mediaID, LotID: lotID, Type: models.MediaTypePhoto,
		CreatedAt: time.Now().UTC(), Mime: "image/jpeg",
	}, []byte("jpeg bytes "+mediaID)))
}

func TestSyncPending_UploadsAndRecords(t *testing.T) {
	s, log := setup(t)
	ctx := context.Background()
	addLotWithPhoto(t, s, "l1", "m1")

	var puts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		puts.Add(1)
		w.Header().Set("ETag", `"fresh"`)
	}))
	defer srv.Close()

	signer := &fakeSigner{url: srv.URL}
	q := New(s.Media, s.Lots, s.Blobs, signer, "u1", log)

	var progress []Progress
	sum, err := q.SyncPending(ctx, func(p Progress) { progress = append(progress, p) })
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Success)
	assert.Zero(t, sum.Failed)
	assert.Equal(t, int64(1), puts.Load())
	require.Len(t, progress, 1)
	assert.Equal(t, 1, progress[0].Done)

	got, err := s.Media.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.Uploaded)
	assert.True(t, got.NeedsSync)
	assert.Contains(t, got.ObjectKey, "u/u1/a/a1/l/l1/")
	assert.Equal(t, `"fresh"`, got.ETag)
}

func TestSyncPending_SecondRunIssuesNoPuts(t *testing.T) {
	s, log := setup(t)
	ctx := context.Background()
	addLotWithPhoto(t, s, "l1", "m1")

	var puts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		puts.Add(1)
	}))
	defer srv.Close()

	signer := &fakeSigner{url: srv.URL}
	q := New(s.Media, s.Lots, s.Blobs, signer, "u1", log)

	_, err := q.SyncPending(ctx, nil)
	require.NoError(t, err)

	sum, err := q.SyncPending(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, sum.Total, "nothing pending on the second run")
	assert.Equal(t, int64(1), puts.Load())
}

func TestSyncPending_ExistsShortCircuit(t *testing.T) {
	s, log := setup(t)
	ctx := context.Background()
	addLotWithPhoto(t, s, "l1", "m1")

	var puts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		puts.Add(1)
	}))
	defer srv.Close()

	signer := &fakeSigner{url: srv.URL, existsAll: true}
	q := New(s.Media, s.Lots, s.Blobs, signer, "u1", log)
	sum, err := q.SyncPending(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Success)
	assert.Zero(t, puts.Load(), "existing object needs no transfer")

	got, err := s.Media.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.Uploaded)
	assert.Equal(t, `"cached"`, got.ETag)
}

func TestSyncPending_OfflineSkipsAll(t *testing.T) {
	s, log := setup(t)
	ctx := context.Background()
	addLotWithPhoto(t, s, "l1", "m1")

	signer := &fakeSigner{offline: true}
	q := New(s.Media, s.Lots, s.Blobs, signer, "u1", log)

	sum, err := q.SyncPending(ctx, nil)
	require.NoError(t, err, "offline is a skip, not a failure")
	assert.Equal(t, 1, sum.Skipped)
	assert.Zero(t, sum.Success)
	assert.Zero(t, signer.signs.Load())
}

func TestSyncPending_MissingBlobIsIntegrityFailure(t *testing.T) {
	s, log := setup(t)
	ctx := context.Background()
	addLotWithPhoto(t, s, "l1", "m1")
	addLotWithPhoto(t, s, "l1", "m2")

	// break m1: drop its blob behind the repository's back
	_, err := s.DB.Exec(`DELETE FROM media_blobs WHERE id='m1'`)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"ok"`)
	}))
	defer srv.Close()

	signer := &fakeSigner{url: srv.URL}
	q := New(s.Media, s.Lots, s.Blobs, signer, "u1", log)

	sum, err := q.SyncPending(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Success, "one bad item does not stop the rest")
	require.Len(t, sum.Errors, 1)
	assert.Contains(t, sum.Errors[0], "m1")
}
