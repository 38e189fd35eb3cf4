package models

import "time"

// LotStatus is the lifecycle state of a lot.
type LotStatus string

const (
	LotStatusDraft    LotStatus = "draft"
	LotStatusComplete LotStatus = "complete"
	LotStatusSent     LotStatus = "sent"
)

// Lot is one item being cataloged for an auction. Number is a zero-padded
// sequence scoped to the owning auction; it is issued once and never reused,
// even after the lot is deleted.
type Lot struct {
	ID          string
	Number      string
	AuctionID   string
	Status      LotStatus
	CreatedAt   time.Time
	Description string
	SharedAt    *time.Time
	SyncedAt    *time.Time
}
