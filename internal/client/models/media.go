package models

import "time"

// MediaType classifies a captured media item.
type MediaType string

const (
	MediaTypePhoto          MediaType = "photo"
	MediaTypeMainVoice      MediaType = "mainVoice"
	MediaTypeDimensionVoice MediaType = "dimensionVoice"
	MediaTypeKeywordVoice   MediaType = "keywordVoice"
)

// Per-lot caps. A lot holds at most one main voice note; replacing it deletes
// the previous one in the same transaction.
const (
	MaxDimensionVoices = 4
	MaxKeywordVoices   = 5
)

// MediaItem is the metadata row for one captured photo or voice note.
// Its raw bytes live in a MediaBlob under the same id; the two are created
// and deleted together. A MediaItem without its blob is an integrity
// violation, not a soft state.
type MediaItem struct {
	ID         string
	LotID      string
	Type       MediaType
	Index      int // 1-based ordering within (lot, type)
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
	NeedsSync  bool
}

// MediaBlob is the raw binary payload for a MediaItem, keyed by the same id.
type MediaBlob struct {
	ID       string
	Data     []byte
	MimeType string
	Size     int64
}
