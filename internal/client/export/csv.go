// Package export turns an auction's lots and media into a share bundle: a
// CSV manifest and a zip archive of the media files.
package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/client/objectkey"
)

// csvHeader is the fixed manifest column order. Consumers key on it; never
// reorder.
var csvHeader = []string{
	"auction_id", "auction_name", "lot_id", "lot_number", "status",
	"created_at", "media_type", "media_index", "filename", "uploaded",
	"remote_path",
}

// Filename derives the archive-local file name of one media item:
// <lotNumber>_<type>_<index><ext>.
func Filename(lotNumber string, item *models.MediaItem) string {
	return fmt.Sprintf("%s_%s_%d%s", lotNumber, item.Type, item.Index, objectkey.Ext(item.Mime))
}

// BuildCSV renders the manifest: one row per media item, and one row with
// empty media columns for a lot that has none, so every lot is visible.
func BuildCSV(a *models.Auction, lots []models.Lot, mediaByLot map[string][]models.MediaItem) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range lots {
		lot := &lots[i]
		items := mediaByLot[lot.ID]
		if len(items) == 0 {
			if err := w.Write(lotRow(a, lot, nil)); err != nil {
				return "", fmt.Errorf("failed to write csv row: %w", err)
			}
			continue
		}
		for j := range items {
			if err := w.Write(lotRow(a, lot, &items[j])); err != nil {
				return "", fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return sb.String(), nil
}

func lotRow(a *models.Auction, lot *models.Lot, item *models.MediaItem) []string {
	row := []string{
		a.ID, a.Name, lot.ID, lot.Number, string(lot.Status),
		lot.CreatedAt.UTC().Format(time.RFC3339),
		"", "", "", "", "",
	}
	if item != nil {
		row[6] = string(item.Type)
		row[7] = strconv.Itoa(item.Index)
		row[8] = Filename(lot.Number, item)
		row[9] = strconv.FormatBool(item.Uploaded)
		row[10] = item.RemotePath
	}
	return row
}
