package media

import (
	"context"
	"errors"

	"github.com/dkovalev/lotkeeper/internal/client/models"
)

// ErrCapExceeded is returned when a lot already holds the maximum number of
// voice notes of the requested type.
var ErrCapExceeded = errors.New("media cap exceeded for lot")

// UploadResult carries everything a successful upload learned about an item.
type UploadResult struct {
	RemotePath string
	ObjectKey  string
	ETag       string
	Width      int
	Height     int
	DurationMS int64
}

// Repository describes persistence for MediaItem rows and the invariants
// the store layer owns: per-type caps, index assignment, the single main
// voice note, and contiguous photo ordering. Blob coupling on create is
// handled here too, so an item row and its blob appear in one transaction.
type Repository interface {
	// Add inserts a media item and its blob together. It assigns the next
	// 1-based index within (lot, type), enforces the dimension/keyword voice
	// caps, and transactionally replaces an existing main voice note.
	Add(ctx context.Context, item *models.MediaItem, data []byte) error

	// GetByID returns an item or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.MediaItem, error)

	// GetByLot lists a lot's media ordered by type then index.
	GetByLot(ctx context.Context, lotID string) ([]models.MediaItem, error)

	// GetByLotAndType lists one media type of a lot ordered by index.
	GetByLotAndType(ctx context.Context, lotID string, t models.MediaType) ([]models.MediaItem, error)

	// CountByLotAndType counts a lot's media of one type.
	CountByLotAndType(ctx context.Context, lotID string, t models.MediaType) (int, error)

	// GetAllPendingUpload returns items whose bytes have not reached remote
	// object storage yet (uploaded=0).
	GetAllPendingUpload(ctx context.Context) ([]*models.MediaItem, error)

	// MarkUploaded atomically flags an item uploaded, stores the remote
	// coordinates and extracted metadata, and raises needs_sync for the
	// background sync worker.
	MarkUploaded(ctx context.Context, id string, res UploadResult) error

	// GetNeedingSync returns items whose metadata still awaits the remote
	// relational store (needs_sync=1).
	GetNeedingSync(ctx context.Context) ([]*models.MediaItem, error)

	// ClearNeedsSync lowers the needs_sync flag after a confirmed upsert.
	ClearNeedsSync(ctx context.Context, id string) error

	// RenumberPhotos atomically rewrites the photo ordering of a lot from a
	// full ordered id list, leaving indices contiguous 1..N. The list must
	// contain exactly the lot's current photos.
	RenumberPhotos(ctx context.Context, lotID string, orderedIDs []string) error
}
