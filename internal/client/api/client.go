// Package api is the client's HTTP surface to the server: presign requests,
// idempotent sync upserts and the connectivity probe. Transport errors are
// folded into the common error taxonomy so callers never branch on raw
// net/http failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dkovalev/lotkeeper/internal/api"
	"github.com/dkovalev/lotkeeper/internal/common"
)

// Client talks JSON to the sync server using a bearer device token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Ping probes connectivity. A network-level failure maps to ErrOffline so
// the online watcher and the sync worker can treat it as "wait", not "error".
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodGet, "/api/ping", nil, &out)
}

// SignUpload asks for a presigned PUT, or learns the object already exists.
func (c *Client) SignUpload(ctx context.Context, req *api.SignUploadRequest) (*api.SignUploadResponse, error) {
	resp := &api.SignUploadResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/sign-upload", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SignDownload asks for a presigned GET over an already-stored object.
func (c *Client) SignDownload(ctx context.Context, req *api.SignDownloadRequest) (*api.SignDownloadResponse, error) {
	resp := &api.SignDownloadResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/sign-download", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) UpsertAuction(ctx context.Context, a *api.AuctionUpsert) error {
	return c.do(ctx, http.MethodPut, "/api/sync/auctions", a, nil)
}

func (c *Client) UpsertLot(ctx context.Context, l *api.LotUpsert) error {
	return c.do(ctx, http.MethodPut, "/api/sync/lots", l, nil)
}

func (c *Client) UpsertMedia(ctx context.Context, m *api.MediaUpsert) error {
	return c.do(ctx, http.MethodPut, "/api/sync/media", m, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthHeaderName, "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	var e api.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, e.Error)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrScopeViolation, e.Error)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, e.Error)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s %s: %s", common.ErrTransient, method, path, e.Error)
	default:
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, e.Error)
	}
}
