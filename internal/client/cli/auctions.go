package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/meta"
)

// Auctions lists the active auctions with their lot counts.
func (a *App) Auctions(ctx context.Context) error {
	all, err := a.store.Auctions.GetAll(ctx, false)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	if len(all) == 0 {
		fmt.Println("No auctions yet; create one with: use <name>")
		return nil
	}
	for _, auc := range all {
		n, err := a.store.Lots.CountByAuction(ctx, auc.ID)
		if err != nil {
			fmt.Println(err.Error())
			return err
		}
		marker := " "
		if auc.ID == a.selectedAuction {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  (%d lots)\n", marker, auc.ID, auc.Name, n)
	}
	return nil
}

// Use selects an auction by name, creating it when it does not exist yet.
func (a *App) Use(ctx context.Context, args []string) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		var err error
		name, err = GetSimpleText(a.reader, "Enter auction name:", os.Stdout)
		if err != nil {
			fmt.Println(err.Error())
			return err
		}
	}
	if name == "" {
		fmt.Println("Usage: use <name>")
		return nil
	}

	a.cleanupCurrentLot(ctx)

	all, err := a.store.Auctions.GetAll(ctx, true)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	var selected *models.Auction
	for i := range all {
		if all[i].Name == name {
			selected = &all[i]
			break
		}
	}
	if selected == nil {
		selected = &models.Auction{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
		if err := a.store.Auctions.CreateOrUpdate(ctx, selected); err != nil {
			fmt.Println(err.Error())
			return err
		}
		a.worker.EnqueueAuction(selected.ID)
		fmt.Println("Created auction", selected.ID)
	}

	a.selectedAuction = selected.ID
	a.currentLot = ""
	if err := a.store.Meta.Set(ctx, meta.KeySelectedAuction, []byte(selected.ID)); err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Println("Using auction", selected.Name)
	return nil
}

// DeleteAuction removes an auction by name. An auction that still owns lots
// is archived instead, so its lot numbers stay burned; only an empty auction
// is hard-deleted.
func (a *App) DeleteAuction(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: delete-auction <name>")
		return nil
	}
	name := args[0]

	all, err := a.store.Auctions.GetAll(ctx, false)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	var target *models.Auction
	for i := range all {
		if all[i].Name == name {
			target = &all[i]
			break
		}
	}
	if target == nil {
		fmt.Println("No such auction:", name)
		return nil
	}

	if target.ID == a.selectedAuction {
		a.cleanupCurrentLot(ctx)
		a.selectedAuction = ""
		a.currentLot = ""
		_ = a.store.Meta.Delete(ctx, meta.KeySelectedAuction)
	}

	n, err := a.store.Lots.CountByAuction(ctx, target.ID)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	if n > 0 {
		if err := a.store.Auctions.Archive(ctx, target.ID); err != nil {
			fmt.Println(err.Error())
			return err
		}
		a.worker.EnqueueAuction(target.ID)
		fmt.Printf("Auction %s still owns %d lots; archived instead\n", name, n)
		return nil
	}

	if err := a.store.Auctions.Delete(ctx, target.ID); err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Println("Deleted auction", name)
	return nil
}

// restoreSelection brings back the auction the user worked with last time.
func (a *App) restoreSelection(ctx context.Context) {
	v, err := a.store.Meta.Get(ctx, meta.KeySelectedAuction)
	if err != nil || v == nil {
		return
	}
	if _, err := a.store.Auctions.GetByID(ctx, string(v)); err != nil {
		return
	}
	a.selectedAuction = string(v)
}
