package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkovalev/lotkeeper/internal/client/models"
)

// NewLot issues the next number for the selected auction and opens a draft
// lot. A previously opened lot that never got any media is removed silently;
// its number stays burned.
func (a *App) NewLot(ctx context.Context) error {
	if a.selectedAuction == "" {
		fmt.Println("Select an auction first: use <name>")
		return nil
	}

	a.cleanupCurrentLot(ctx)

	number, err := a.numbering.Next(ctx, a.selectedAuction)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	lot := &models.Lot{
		ID:        uuid.NewString(),
		Number:    number,
		AuctionID: a.selectedAuction,
		Status:    models.LotStatusDraft,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.Lots.Create(ctx, lot); err != nil {
		fmt.Println(err.Error())
		return err
	}

	a.currentLot = lot.ID
	fmt.Println("Lot", number, "opened; add at least one photo")
	return nil
}

// cleanupCurrentLot drops the current lot when it is still empty. Called
// when the user moves on (new lot, auction switch, exit).
func (a *App) cleanupCurrentLot(ctx context.Context) {
	if a.currentLot == "" {
		return
	}
	deleted, err := a.store.Lots.DeleteIfEmpty(ctx, a.currentLot)
	if err != nil {
		a.log.Warn(ctx, "failed to clean up empty lot", "lot", a.currentLot, "error", err)
		return
	}
	if deleted {
		fmt.Println("Discarded empty lot")
	}
	a.currentLot = ""
}

// Status prints the connection mode, the selection and the sync picture.
func (a *App) Status(ctx context.Context) error {
	fmt.Println("mode:", string(a.Mode))

	if a.selectedAuction != "" {
		auc, err := a.store.Auctions.GetByID(ctx, a.selectedAuction)
		if err == nil {
			fmt.Println("auction:", auc.Name)
		}
	}
	if a.currentLot != "" {
		lot, err := a.store.Lots.GetByID(ctx, a.currentLot)
		if err == nil {
			fmt.Println("lot:", lot.Number, string(lot.Status))
		}
	}

	pending, err := a.store.Media.GetAllPendingUpload(ctx)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Println("pending uploads:", len(pending))
	fmt.Println("sync:", string(a.worker.State()), "queued:", a.worker.Pending())
	return nil
}
