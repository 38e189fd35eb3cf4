package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wire "github.com/dkovalev/lotkeeper/internal/api"
	"github.com/dkovalev/lotkeeper/internal/logging"
	"github.com/dkovalev/lotkeeper/internal/server/auth"
	"github.com/dkovalev/lotkeeper/internal/server/config"
	"github.com/dkovalev/lotkeeper/internal/server/models"
)

type fakePresigner struct {
	existing map[string]string // key -> etag
}

func (f *fakePresigner) Exists(ctx context.Context, key string) (bool, string, error) {
	etag, ok := f.existing[key]
	return ok, etag, nil
}

func (f *fakePresigner) SignPut(ctx context.Context, key, contentType string) (string, error) {
	return "http://signed/put/" + key, nil
}

func (f *fakePresigner) SignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "http://signed/get/" + key, nil
}

type memAuctions struct{ rows map[string]*models.Auction }

func (m *memAuctions) Upsert(ctx context.Context, a *models.Auction) error {
	m.rows[a.ID] = a
	return nil
}

type memLots struct{ rows map[string]*models.Lot }

func (m *memLots) Upsert(ctx context.Context, l *models.Lot) error {
	m.rows[l.ID] = l
	return nil
}

type memMedia struct{ rows map[string]*models.MediaItem }

func (m *memMedia) Upsert(ctx context.Context, it *models.MediaItem) error {
	m.rows[it.ID] = it
	return nil
}

type testEnv struct {
	srv      *httptest.Server
	token    string
	auctions *memAuctions
	lots     *memLots
	media    *memMedia
	presign  *fakePresigner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"

	e := &testEnv{
		auctions: &memAuctions{rows: map[string]*models.Auction{}},
		lots:     &memLots{rows: map[string]*models.Lot{}},
		media:    &memMedia{rows: map[string]*models.MediaItem{}},
		presign:  &fakePresigner{existing: map[string]string{}},
	}

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := NewServer(cfg, e.presign, e.auctions, e.lots, e.media, log)
	e.srv = httptest.NewServer(s.Router())
	t.Cleanup(e.srv.Close)

	token, err := auth.GenerateToken("u1", []byte(cfg.SecretKey), time.Hour)
	require.NoError(t, err)
	e.token = token
	return e
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestPing_NoAuthNeeded(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, http.MethodGet, "/api/ping", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_Rejections(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/api/sign-upload", wire.SignUploadRequest{ObjectKey: "u/u1/a/a1/x.jpg"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/sign-upload", wire.SignUploadRequest{ObjectKey: "u/u1/a/a1/x.jpg"}, "bogus.token.here")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignUpload_NewObject(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/api/sign-upload",
		wire.SignUploadRequest{AuctionID: "a1", ObjectKey: "u/u1/a/a1/abc.jpg", ContentType: "image/jpeg"}, e.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out wire.SignUploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Exists)
	assert.Equal(t, "http://signed/put/u/u1/a/a1/abc.jpg", out.URL)
}

func TestSignUpload_ExistingObjectShortCircuits(t *testing.T) {
	e := newTestEnv(t)
	e.presign.existing["u/u1/a/a1/abc.jpg"] = `"etag1"`

	resp := e.do(t, http.MethodPost, "/api/sign-upload",
		wire.SignUploadRequest{AuctionID: "a1", ObjectKey: "u/u1/a/a1/abc.jpg"}, e.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out wire.SignUploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Exists)
	assert.Equal(t, `"etag1"`, out.ETag)
	assert.Empty(t, out.URL)
}

func TestSignUpload_ForeignScopeForbidden(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/api/sign-upload",
		wire.SignUploadRequest{ObjectKey: "u/other/a/a1/abc.jpg"}, e.token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSignDownload(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/api/sign-download",
		wire.SignDownloadRequest{ObjectKey: "u/u1/a/a1/abc.jpg", ExpiresSeconds: 60}, e.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out wire.SignDownloadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "http://signed/get/u/u1/a/a1/abc.jpg", out.URL)
}

func TestSyncEndpoints_Upsert(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPut, "/api/sync/auctions",
		wire.AuctionUpsert{ID: "a1", Name: "Spring", CreatedAt: time.Now().UTC()}, e.token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, e.auctions.rows, "a1")

	resp = e.do(t, http.MethodPut, "/api/sync/lots",
		wire.LotUpsert{ID: "l1", Number: "0001", AuctionID: "a1", Status: "complete", CreatedAt: time.Now().UTC()}, e.token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, e.lots.rows, "l1")

	resp = e.do(t, http.MethodPut, "/api/sync/media",
		wire.MediaUpsert{ID: "m1", LotID: "l1", Type: "photo", Index: 1,
			CreatedAt: time.Now().UTC(), ObjectKey: "u/u1/a/a1/l/l1/abc.jpg"}, e.token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, e.media.rows, "m1")
}

func TestSyncMedia_ForeignKeyScopeForbidden(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPut, "/api/sync/media",
		wire.MediaUpsert{ID: "m1", LotID: "l1", Type: "photo", Index: 1,
			ObjectKey: "u/intruder/a/a1/l/l1/abc.jpg"}, e.token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSync_BadJSON(t *testing.T) {
	e := newTestEnv(t)

	req, err := http.NewRequest(http.MethodPut, e.srv.URL+"/api/sync/lots", bytes.NewReader([]byte("{broken")))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+e.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
