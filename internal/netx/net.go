// Package netx holds small HTTP helpers shared by client components.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// PutPresigned uploads data to a presigned object-storage URL with a single
// PUT. The returned ETag header, when present, identifies the stored object.
func PutPresigned(ctx context.Context, client *http.Client, url string, contentType string, data []byte) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return resp.Header.Get("ETag"), nil
}
