package meta

import "context"

// Keys used by the application. Lot counters are stored one key per auction.
const (
	KeySelectedAuction  = "selectedAuction"
	KeyLotCounterPrefix = "lotCounter:"
)

// Repository is a generic key-value table for small application state:
// the currently selected auction and the per-auction lot counters.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
