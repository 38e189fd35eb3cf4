// Package models defines the local data model for auctions, lots and their
// captured media.
package models

import "time"

// Auction is the top-level grouping for lots. Identity is a client-generated
// UUID. Auctions that still own lots are archived instead of deleted.
type Auction struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Archived  bool
}
