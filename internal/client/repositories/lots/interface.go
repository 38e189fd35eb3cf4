package lots

import (
	"context"
	"time"

	"github.com/dkovalev/lotkeeper/internal/client/models"
)

// Repository describes persistence for Lot rows in the local store.
//
// Lot numbers are issued by the numbering service, not here; this layer
// only stores what it is given and enforces (auction_id, number) uniqueness
// through the schema.
type Repository interface {
	// Create inserts a new lot.
	Create(ctx context.Context, lot *models.Lot) error

	// GetByID returns a lot or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Lot, error)

	// GetByAuction lists an auction's lots ordered by number.
	GetByAuction(ctx context.Context, auctionID string) ([]models.Lot, error)

	// UpdateStatus moves a lot through draft -> complete -> sent.
	UpdateStatus(ctx context.Context, id string, status models.LotStatus) error

	// SetDescription stores the generated or hand-written description.
	SetDescription(ctx context.Context, id string, description string) error

	// MarkShared records when the lot was exported/sent.
	MarkShared(ctx context.Context, id string, at time.Time) error

	// MarkSynced records that the remote relational store has confirmed the
	// lot's current state.
	MarkSynced(ctx context.Context, id string, at time.Time) error

	// GetUnsynced returns lots with no confirmed remote state, for the
	// recovery pass at startup and on reconnect.
	GetUnsynced(ctx context.Context) ([]*models.Lot, error)

	// CountByAuction returns the number of lots owned by an auction,
	// deciding archive-vs-delete for the auction itself.
	CountByAuction(ctx context.Context, auctionID string) (int, error)

	// DeleteIfEmpty removes a lot only if it has no media attached, in one
	// transaction. Returns true when the lot was deleted. Used for silent
	// cleanup of abandoned lots; the issued number stays burned.
	DeleteIfEmpty(ctx context.Context, id string) (bool, error)
}
