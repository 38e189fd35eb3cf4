// Package upload pushes pending media bytes to remote object storage through
// presigned URLs. The queue is derived, not stored: pending simply means
// uploaded=0, so a crashed or interrupted run resumes by re-reading the
// store. Content addressing makes re-runs cheap: already-stored objects are
// confirmed by the server without a transfer.
package upload

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	wire "github.com/dkovalev/lotkeeper/internal/api"
	"github.com/dkovalev/lotkeeper/internal/client/mediameta"
	"github.com/dkovalev/lotkeeper/internal/client/models"
	"github.com/dkovalev/lotkeeper/internal/client/objectkey"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/blobs"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/lots"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/media"
	"github.com/dkovalev/lotkeeper/internal/common"
	"github.com/dkovalev/lotkeeper/internal/logging"
	"github.com/dkovalev/lotkeeper/internal/netx"
)

const (
	concurrency  = 3
	putAttempts  = 2
	putRetryWait = 2 * time.Second
	maxErrors    = 20
)

// Signer is the server-side half of an upload: connectivity probe plus
// presign-or-exists.
type Signer interface {
	Ping(ctx context.Context) error
	SignUpload(ctx context.Context, req *wire.SignUploadRequest) (*wire.SignUploadResponse, error)
}

// Progress reports per-item completion to the UI.
type Progress struct {
	Done  int
	Total int
	Label string
}

// Summary is the outcome of one SyncPending run.
type Summary struct {
	Success int
	Failed  int
	Skipped int
	Total   int
	Errors  []string
}

// Queue uploads pending media. Zero-value is not usable; construct with New.
type Queue struct {
	media  media.Repository
	lots   lots.Repository
	blobs  blobs.Repository
	signer Signer
	http   *http.Client
	log    logging.Logger
	userID string
}

func New(m media.Repository, l lots.Repository, b blobs.Repository, s Signer, userID string, log logging.Logger) *Queue {
	return &Queue{
		media:  m,
		lots:   l,
		blobs:  b,
		signer: s,
		http:   &http.Client{Timeout: 2 * time.Minute},
		log:    log,
		userID: userID,
	}
}

// SyncPending uploads every item with uploaded=0, at most three at a time.
// Offline is not an error: every pending item is counted as skipped and the
// run succeeds. One failing item never stops the rest.
func (q *Queue) SyncPending(ctx context.Context, onProgress func(Progress)) (*Summary, error) {
	pending, err := q.media.GetAllPendingUpload(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending uploads: %w", err)
	}

	s := &Summary{Total: len(pending)}
	if len(pending) == 0 {
		return s, nil
	}

	if err := q.signer.Ping(ctx); err != nil {
		q.log.Info(ctx, "offline, skipping uploads", "pending", len(pending))
		s.Skipped = len(pending)
		return s, nil
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		sem  = make(chan struct{}, concurrency)
		done int
	)

	for _, item := range pending {
		item := item
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			err := q.uploadOne(ctx, item)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				s.Failed++
				if len(s.Errors) < maxErrors {
					s.Errors = append(s.Errors, fmt.Sprintf("%s: %v", item.ID, err))
				}
				q.log.Error(ctx, "upload failed", "media", item.ID, "lot", item.LotID, "type", item.Type, "error", err)
			} else {
				s.Success++
			}
			if onProgress != nil {
				onProgress(Progress{Done: done, Total: s.Total, Label: fmt.Sprintf("%s %s", item.Type, item.ID)})
			}
		}()
	}
	wg.Wait()

	return s, nil
}

func (q *Queue) uploadOne(ctx context.Context, item *models.MediaItem) error {
	blob, err := q.blobs.Get(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("%w: media %s (lot %s, type %s) has no blob: %v",
			common.ErrIntegrity, item.ID, item.LotID, item.Type, err)
	}

	lot, err := q.lots.GetByID(ctx, item.LotID)
	if err != nil {
		return fmt.Errorf("failed to resolve lot %s: %w", item.LotID, err)
	}

	key := objectkey.For(blob.Data, q.userID, lot.AuctionID, item.LotID, item.Mime)

	signed, err := q.signer.SignUpload(ctx, &wire.SignUploadRequest{
		AuctionID:   lot.AuctionID,
		ObjectKey:   key,
		ContentType: item.Mime,
	})
	if err != nil {
		return fmt.Errorf("failed to presign: %w", err)
	}

	etag := signed.ETag
	if !signed.Exists {
		b := retry.WithMaxRetries(putAttempts-1, retry.NewConstant(putRetryWait))
		err = retry.Do(ctx, b, func(ctx context.Context) error {
			var putErr error
			etag, putErr = netx.PutPresigned(ctx, q.http, signed.URL, item.Mime, blob.Data)
			if putErr != nil {
				return retry.RetryableError(putErr)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to put object: %w", err)
		}
	}

	res := media.UploadResult{
		RemotePath: key,
		ObjectKey:  key,
		ETag:       etag,
	}
	switch item.Type {
	case models.MediaTypePhoto:
		if w, h, err := mediameta.ImageSize(blob.Data); err == nil {
			res.Width, res.Height = w, h
		}
	default:
		if ms, err := mediameta.WAVDurationMS(blob.Data); err == nil {
			res.DurationMS = ms
		}
	}

	if err := q.media.MarkUploaded(ctx, item.ID, res); err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}
