// Package models holds the server-side mirrors of the client's rows. The
// server stores metadata only; media bytes live in object storage.
package models

import "time"

type Auction struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Archived  bool
}

type Lot struct {
	ID          string
	Number      string
	AuctionID   string
	Status      string
	CreatedAt   time.Time
	Description string
	SharedAt    *time.Time
}

type MediaItem struct {
	ID         string
	LotID      string
	Type       string
	Index      int
	CreatedAt  time.Time
	Uploaded   bool
	Mime       string
	BytesSize  int64
	Width      int
	Height     int
	DurationMS int64
	RemotePath string
	ObjectKey  string
	ETag       string
}
