package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/media"
)

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
}

// readMediaInput accepts a local file path, a data: URI or an http(s) URL and
// resolves it to raw bytes plus a MIME type.
func readMediaInput(ctx context.Context, input string) ([]byte, string, error) {
	var src models.MediaSource
	switch {
	case strings.HasPrefix(input, "data:"):
		src = models.DataURI{URI: input}
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		src = models.RemoteURL{URL: input}
	default:
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, "", err
		}
		src = models.RawBytes{Data: data, Mime: mimeByExt[strings.ToLower(filepath.Ext(input))]}
	}

	data, mime, err := models.ResolveSource(ctx, src, nil, nil)
	if err != nil {
		return nil, "", err
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return data, mime, nil
}

// AddPhoto attaches a photo file to the current lot. The first photo
// promotes a draft lot to complete.
func (a *App) AddPhoto(ctx context.Context, args []string) error {
	if a.currentLot == "" {
		fmt.Println("Open a lot first: newlot")
		return nil
	}
	if len(args) == 0 {
		fmt.Println("Usage: addphoto <file>")
		return nil
	}

	data, mime, err := readMediaInput(ctx, args[0])
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	item := &models.MediaItem{
		ID:        uuid.NewString(),
		LotID:     a.currentLot,
		Type:      models.MediaTypePhoto,
		CreatedAt: time.Now().UTC(),
		Mime:      mime,
	}
	if err := a.store.Media.Add(ctx, item, data); err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Printf("Photo %d added (%s)\n", item.Index, item.ID)

	return a.promoteIfFirstPhoto(ctx)
}

func (a *App) promoteIfFirstPhoto(ctx context.Context) error {
	lot, err := a.store.Lots.GetByID(ctx, a.currentLot)
	if err != nil {
		return err
	}
	if lot.Status != models.LotStatusDraft {
		return nil
	}
	n, err := a.store.Media.CountByLotAndType(ctx, a.currentLot, models.MediaTypePhoto)
	if err != nil {
		return err
	}
	if n >= 1 {
		if err := a.store.Lots.UpdateStatus(ctx, a.currentLot, models.LotStatusComplete); err != nil {
			return err
		}
		a.worker.EnqueueLot(a.currentLot)
		fmt.Println("Lot is complete")
	}
	return nil
}

var voiceKinds = map[string]models.MediaType{
	"main":      models.MediaTypeMainVoice,
	"dimension": models.MediaTypeDimensionVoice,
	"keyword":   models.MediaTypeKeywordVoice,
}

// AddVoice attaches a voice note. The recording gate is held for the whole
// capture so background sync stays quiet while audio is being taken.
func (a *App) AddVoice(ctx context.Context, args []string) error {
	if a.currentLot == "" {
		fmt.Println("Open a lot first: newlot")
		return nil
	}
	if len(args) < 2 {
		fmt.Println("Usage: addvoice <main|dimension|keyword> <file>")
		return nil
	}
	kind, ok := voiceKinds[args[0]]
	if !ok {
		fmt.Println("Unknown voice kind:", args[0])
		return nil
	}

	a.gate.Acquire()
	defer a.gate.Release()

	data, mime, err := readMediaInput(ctx, args[1])
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	item := &models.MediaItem{
		ID:        uuid.NewString(),
		LotID:     a.currentLot,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
		Mime:      mime,
	}
	if err := a.store.Media.Add(ctx, item, data); err != nil {
		if errors.Is(err, media.ErrCapExceeded) {
			fmt.Println("This lot already has the maximum number of", args[0], "voice notes")
			return nil
		}
		fmt.Println(err.Error())
		return err
	}
	fmt.Printf("Voice note added (%s)\n", item.ID)
	return nil
}

// Media lists the current lot's media.
func (a *App) Media(ctx context.Context) error {
	if a.currentLot == "" {
		fmt.Println("Open a lot first: newlot")
		return nil
	}
	items, err := a.store.Media.GetByLot(ctx, a.currentLot)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	if len(items) == 0 {
		fmt.Println("No media yet")
		return nil
	}
	for _, it := range items {
		state := "local"
		if it.Uploaded {
			state = "uploaded"
		}
		fmt.Printf("%s  %s #%d  %s  %s\n", it.ID, it.Type, it.Index, it.Mime, state)
	}
	return nil
}

// DeleteMedia removes one media item and its bytes; remaining photos are
// renumbered so indices stay contiguous.
func (a *App) DeleteMedia(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: delete-media <id>")
		return nil
	}
	id := args[0]

	item, err := a.store.Media.GetByID(ctx, id)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	if err := a.store.Blobs.DeleteMediaCompletely(ctx, id); err != nil {
		fmt.Println(err.Error())
		return err
	}

	if item.Type == models.MediaTypePhoto {
		remaining, err := a.store.Media.GetByLotAndType(ctx, item.LotID, models.MediaTypePhoto)
		if err != nil {
			fmt.Println(err.Error())
			return err
		}
		ids := make([]string, 0, len(remaining))
		for _, r := range remaining {
			ids = append(ids, r.ID)
		}
		if err := a.store.Media.RenumberPhotos(ctx, item.LotID, ids); err != nil {
			fmt.Println(err.Error())
			return err
		}
	}

	fmt.Println("Deleted", id)
	return nil
}
