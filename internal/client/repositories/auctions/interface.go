package auctions

import (
	"context"

	"github.com/dkovalev/lotkeeper/internal/client/models"
)

// Repository describes persistence for Auction rows in the local store.
type Repository interface {
	// CreateOrUpdate upserts an auction by id.
	CreateOrUpdate(ctx context.Context, a *models.Auction) error

	// GetByID returns an auction or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Auction, error)

	// GetAll lists auctions, optionally including archived ones.
	GetAll(ctx context.Context, includeArchived bool) ([]models.Auction, error)

	// Archive soft-deletes an auction that still owns lots.
	Archive(ctx context.Context, id string) error

	// Delete hard-deletes an auction. Callers must only do this when the
	// auction owns zero lots; use Archive otherwise.
	Delete(ctx context.Context, id string) error
}
