// Package api holds the JSON request/response types shared by the client
// and the server. All timestamps travel as RFC 3339 UTC.
package api

import "time"

// SignUploadRequest asks for a presigned PUT for an object key the caller
// intends to fill. The server verifies the key lies inside the token owner's
// prefix before signing.
type SignUploadRequest struct {
	AuctionID   string `json:"auctionId"`
	ObjectKey   string `json:"objectKey"`
	ContentType string `json:"contentType"`
}

// SignUploadResponse either reports the object already exists (content
// addressing makes this common) or carries a short-lived upload URL.
type SignUploadResponse struct {
	Exists bool   `json:"exists"`
	Key    string `json:"key"`
	ETag   string `json:"etag,omitempty"`
	URL    string `json:"url,omitempty"`
}

type SignDownloadRequest struct {
	ObjectKey      string `json:"objectKey"`
	ExpiresSeconds int    `json:"expiresSeconds,omitempty"`
}

type SignDownloadResponse struct {
	URL string `json:"url"`
}

// AuctionUpsert mirrors the local auction row; upserts are idempotent.
type AuctionUpsert struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Archived  bool      `json:"archived"`
}

type LotUpsert struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"`
	AuctionID   string     `json:"auctionId"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	Description string     `json:"description,omitempty"`
	SharedAt    *time.Time `json:"sharedAt,omitempty"`
}

// MediaUpsert carries media metadata only; the bytes travel through object
// storage, never through this endpoint.
type MediaUpsert struct {
	ID         string    `json:"id"`
	LotID      string    `json:"lotId"`
	Type       string    `json:"type"`
	Index      int       `json:"index"`
	CreatedAt  time.Time `json:"createdAt"`
	Uploaded   bool      `json:"uploaded"`
	Mime       string    `json:"mime,omitempty"`
	BytesSize  int64     `json:"bytesSize,omitempty"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	DurationMS int64     `json:"durationMs,omitempty"`
	RemotePath string    `json:"remotePath,omitempty"`
	ObjectKey  string    `json:"objectKey,omitempty"`
	ETag       string    `json:"etag,omitempty"`
}

// ErrorResponse is the uniform error body for non-2xx replies.
type ErrorResponse struct {
	Error string `json:"error"`
}
