package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"github.com/dkovalev/lotkeeper/internal/client/models"
)

// Entry names one media file destined for the archive.
type Entry struct {
	LotNumber string // folder under media/
	Filename  string
	MediaID   string
}

// BuildZip assembles the share archive: export.csv first, then each entry
// under media/<lotNumber>/<filename>. A failing entry is recorded under its
// identifier and bundling continues; the archive ships with whatever made
// it in. Progress is a monotone percentage; the CSV counts as one entry.
func BuildZip(ctx context.Context, blobs models.BlobGetter, entries []Entry, csvText string, onProgress func(percent int)) ([]byte, []error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	total := len(entries) + 1
	done := 0
	progress := func() {
		done++
		if onProgress != nil {
			onProgress(done * 100 / total)
		}
	}

	var errs []error

	f, err := zw.Create("export.csv")
	if err != nil {
		errs = append(errs, fmt.Errorf("export.csv: %w", err))
	} else if _, err := f.Write([]byte(csvText)); err != nil {
		errs = append(errs, fmt.Errorf("export.csv: %w", err))
	}
	progress()

	for _, e := range entries {
		name := fmt.Sprintf("media/%s/%s", e.LotNumber, e.Filename)

		data, _, err := models.ResolveSource(ctx, models.StoredID{ID: e.MediaID}, blobs, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			progress()
			continue
		}

		f, err := zw.Create(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			progress()
			continue
		}
		if _, err := f.Write(data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			progress()
			continue
		}
		progress()
	}

	if err := zw.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to finalize archive: %w", err))
		return nil, errs
	}
	return buf.Bytes(), errs
}
