package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dkovalev/lotkeeper/internal/client/export"
	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/client/upload"
)

// Upload pushes all pending media bytes to object storage.
func (a *App) Upload(ctx context.Context) error {
	sum, err := a.queue.SyncPending(ctx, func(p upload.Progress) {
		fmt.Printf("[%d/%d] %s\n", p.Done, p.Total, p.Label)
	})
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Printf("uploaded %d, failed %d, skipped %d of %d\n", sum.Success, sum.Failed, sum.Skipped, sum.Total)
	for _, e := range sum.Errors {
		fmt.Println(" ", e)
	}
	return nil
}

// Export writes the share bundle (CSV manifest + media zip) for the selected
// auction and marks its completed lots as shared.
func (a *App) Export(ctx context.Context) error {
	if a.selectedAuction == "" {
		fmt.Println("Select an auction first: use <name>")
		return nil
	}

	auction, err := a.store.Auctions.GetByID(ctx, a.selectedAuction)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	lots, err := a.store.Lots.GetByAuction(ctx, a.selectedAuction)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	mediaByLot := make(map[string][]models.MediaItem, len(lots))
	var entries []export.Entry
	for _, lot := range lots {
		items, err := a.store.Media.GetByLot(ctx, lot.ID)
		if err != nil {
			fmt.Println(err.Error())
			return err
		}
		mediaByLot[lot.ID] = items
		for i := range items {
			entries = append(entries, export.Entry{
				LotNumber: lot.Number,
				Filename:  export.Filename(lot.Number, &items[i]),
				MediaID:   items[i].ID,
			})
		}
	}

	csvText, err := export.BuildCSV(auction, lots, mediaByLot)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	archive, errs := export.BuildZip(ctx, a.store.Blobs, entries, csvText, func(percent int) {
		fmt.Printf("\rbundling %d%%", percent)
	})
	fmt.Println()
	for _, e := range errs {
		fmt.Println(" ", e)
	}
	if archive == nil {
		return fmt.Errorf("export failed")
	}

	name := fmt.Sprintf("export_%s_%s.zip", auction.Name, time.Now().Format("20060102_150405"))
	if err := os.WriteFile(name, archive, 0o644); err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Println("Wrote", name)

	now := time.Now().UTC()
	for _, lot := range lots {
		if lot.Status != models.LotStatusComplete {
			continue
		}
		if err := a.store.Lots.MarkShared(ctx, lot.ID, now); err != nil {
			fmt.Println(err.Error())
			continue
		}
		if err := a.store.Lots.UpdateStatus(ctx, lot.ID, models.LotStatusSent); err != nil {
			fmt.Println(err.Error())
			continue
		}
		a.worker.EnqueueLot(lot.ID)
	}
	return nil
}

// Sync re-derives the deferred-operation queue and runs one pass now.
func (a *App) Sync(ctx context.Context) error {
	if err := a.worker.Recover(ctx); err != nil {
		fmt.Println(err.Error())
		return err
	}
	a.worker.Pass(ctx)
	fmt.Println("sync:", string(a.worker.State()), "queued:", a.worker.Pending())
	return nil
}
