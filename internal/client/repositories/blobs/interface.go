package blobs

import (
	"context"

	"github.com/dkovalev/lotkeeper/internal/client/models"
)

// Repository maps a media id to its raw bytes. Blobs share the lifetime of
// their MediaItem: created together (media.Repository.Add) and deleted
// together (DeleteMediaCompletely). A blob missing for an existing item is
// an integrity violation the caller must surface.
type Repository interface {
	// Save writes or overwrites the blob for a media id.
	Save(ctx context.Context, id string, data []byte, mimeType string) error

	// Get returns the blob or common.ErrNotFound; callers decide whether
	// absence is an integrity violation in their context.
	Get(ctx context.Context, id string) (*models.MediaBlob, error)

	// DeleteMediaCompletely removes the MediaItem row and its blob row in
	// one transaction, never leaving one without the other. Sibling photo
	// indices and lot rows are untouched; renumbering is the caller's job.
	DeleteMediaCompletely(ctx context.Context, id string) error
}
