// Package syncworker pushes local metadata changes (auction, lot and media
// rows) to the remote relational store in the background. The queue of
// deferred operations lives only in memory; durability comes from the local
// flags (needs_sync, synced_at) that Recover re-reads at startup and on
// reconnect. Upserts are idempotent, so replaying an operation is always
// safe.
package syncworker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	wire "github.com/dkovalev/lotkeeper/internal/api"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/auctions"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/lots"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/media"
	"github.com/dkovalev/lotkeeper/internal/common"
	"github.com/dkovalev/lotkeeper/internal/logging"
)

// State describes what the worker is currently doing.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateError   State = "error"
)

const (
	tickInterval  = 5 * time.Second
	backoffBase   = 2 * time.Second
	backoffCap    = 60 * time.Second
	backoffJitter = 500 * time.Millisecond
	maxAttempts   = 10
	priorityOrder = "alm" // auctions before lots before media
)

type opKind byte

const (
	opAuction opKind = 'a'
	opLot     opKind = 'l'
	opMedia   opKind = 'm'
)

type op struct {
	kind     opKind
	id       string
	attempts int
	backoff  retry.Backoff
	notAfter time.Time // earliest next try
}

// SyncAPI is the remote half the worker needs: three idempotent upserts.
type SyncAPI interface {
	UpsertAuction(ctx context.Context, a *wire.AuctionUpsert) error
	UpsertLot(ctx context.Context, l *wire.LotUpsert) error
	UpsertMedia(ctx context.Context, m *wire.MediaUpsert) error
}

// Worker owns the in-memory operation queue and the sync state machine.
type Worker struct {
	api      SyncAPI
	auctions auctions.Repository
	lots     lots.Repository
	media    media.Repository
	gate     *RecordingGate
	online   func() bool
	notifier Notifier
	log      logging.Logger

	mu      sync.Mutex
	queue   map[string]*op
	state   State
	errored bool // inside an error episode; gates notifications

	kick chan struct{}
	now  func() time.Time
}

func New(api SyncAPI, a auctions.Repository, l lots.Repository, m media.Repository,
	gate *RecordingGate, online func() bool, notifier Notifier, log logging.Logger) *Worker {
	return &Worker{
		api:      api,
		auctions: a,
		lots:     l,
		media:    m,
		gate:     gate,
		online:   online,
		notifier: notifier,
		log:      log,
		queue:    make(map[string]*op),
		state:    StateIdle,
		kick:     make(chan struct{}, 1),
		now:      time.Now,
	}
}

func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Pending returns the number of queued operations.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

func (w *Worker) EnqueueAuction(id string) { w.enqueue(opAuction, id) }
func (w *Worker) EnqueueLot(id string)     { w.enqueue(opLot, id) }
func (w *Worker) EnqueueMedia(id string)   { w.enqueue(opMedia, id) }

func (w *Worker) enqueue(kind opKind, id string) {
	key := fmt.Sprintf("%c:%s", kind, id)
	w.mu.Lock()
	if _, ok := w.queue[key]; !ok {
		w.queue[key] = &op{kind: kind, id: id, backoff: newBackoff()}
	}
	w.mu.Unlock()
}

func newBackoff() retry.Backoff {
	return retry.WithJitter(backoffJitter,
		retry.WithCappedDuration(backoffCap,
			retry.NewExponential(backoffBase)))
}

// Kick wakes the run loop without waiting for the next tick; used on the
// offline-to-online transition.
func (w *Worker) Kick() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Run processes the queue every five seconds (or on a kick) until ctx ends.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-w.kick:
		}
		w.Pass(ctx)
	}
}

// Recover re-derives the queue from the local store: every auction (upserts
// are idempotent), every lot without a confirmed remote state, every media
// item still flagged needs_sync. Called at startup and on reconnect.
func (w *Worker) Recover(ctx context.Context) error {
	all, err := w.auctions.GetAll(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to list auctions: %w", err)
	}
	for _, a := range all {
		w.EnqueueAuction(a.ID)
	}

	unsynced, err := w.lots.GetUnsynced(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unsynced lots: %w", err)
	}
	for _, l := range unsynced {
		w.EnqueueLot(l.ID)
	}

	needing, err := w.media.GetNeedingSync(ctx)
	if err != nil {
		return fmt.Errorf("failed to list media needing sync: %w", err)
	}
	for _, m := range needing {
		w.EnqueueMedia(m.ID)
	}

	w.Kick()
	return nil
}

// Pass runs one processing pass over the due operations. Exported so tests
// and the CLI's manual "sync" command can drive the worker without the
// ticker.
func (w *Worker) Pass(ctx context.Context) {
	if w.gate.Held() || !w.online() {
		return
	}

	due := w.takeDue()
	if len(due) == 0 {
		// an empty queue ends the episode; ops waiting out their backoff
		// keep the current state untouched
		if w.Pending() == 0 {
			w.settle(ctx, false)
		}
		return
	}

	w.setState(StateSyncing)

	anyFailed := false
	for _, o := range due {
		err := w.execute(ctx, o)
		switch {
		case err == nil:
			w.remove(o)
		case errors.Is(err, common.ErrOffline):
			// connection dropped mid-pass; keep the op untouched and stop
			return
		default:
			anyFailed = true
			w.recordFailure(ctx, o, err)
		}
	}

	switch {
	case anyFailed:
		w.settle(ctx, true)
	case w.Pending() == 0:
		w.settle(ctx, false)
	default:
		// earlier failures are still waiting out their backoff; keep the
		// episode as it was
		w.mu.Lock()
		if w.errored {
			w.state = StateError
		} else {
			w.state = StateIdle
		}
		w.mu.Unlock()
	}
}

// takeDue snapshots the operations eligible to run now, parents first.
func (w *Worker) takeDue() []*op {
	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()

	var due []*op
	for _, o := range w.queue {
		if !o.notAfter.After(now) {
			due = append(due, o)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		pi, pj := priority(due[i].kind), priority(due[j].kind)
		if pi != pj {
			return pi < pj
		}
		return due[i].id < due[j].id
	})
	return due
}

func priority(k opKind) int {
	for i := 0; i < len(priorityOrder); i++ {
		if opKind(priorityOrder[i]) == k {
			return i
		}
	}
	return len(priorityOrder)
}

func (w *Worker) execute(ctx context.Context, o *op) error {
	switch o.kind {
	case opAuction:
		a, err := w.auctions.GetByID(ctx, o.id)
		if errors.Is(err, common.ErrNotFound) {
			return nil // deleted locally; nothing to push
		}
		if err != nil {
			return err
		}
		return w.api.UpsertAuction(ctx, &wire.AuctionUpsert{
			ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt, Archived: a.Archived,
		})

	case opLot:
		l, err := w.lots.GetByID(ctx, o.id)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		u := &wire.LotUpsert{
			ID: l.ID, Number: l.Number, AuctionID: l.AuctionID,
			Status: string(l.Status), CreatedAt: l.CreatedAt,
			Description: l.Description, SharedAt: l.SharedAt,
		}
		if err := w.api.UpsertLot(ctx, u); err != nil {
			return err
		}
		return w.lots.MarkSynced(ctx, l.ID, w.now().UTC())

	case opMedia:
		m, err := w.media.GetByID(ctx, o.id)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		u := &wire.MediaUpsert{
			ID: m.ID, LotID: m.LotID, Type: string(m.Type), Index: m.Index,
			CreatedAt: m.CreatedAt, Uploaded: m.Uploaded, Mime: m.Mime,
			BytesSize: m.BytesSize, Width: m.Width, Height: m.Height,
			DurationMS: m.DurationMS, RemotePath: m.RemotePath,
			ObjectKey: m.ObjectKey, ETag: m.ETag,
		}
		if err := w.api.UpsertMedia(ctx, u); err != nil {
			return err
		}
		return w.media.ClearNeedsSync(ctx, m.ID)
	}
	return fmt.Errorf("unknown op kind %c", o.kind)
}

func (w *Worker) recordFailure(ctx context.Context, o *op, err error) {
	w.mu.Lock()
	o.attempts++
	if o.attempts >= maxAttempts {
		delete(w.queue, opKey(o))
		w.mu.Unlock()
		w.log.Error(ctx, "sync operation dropped after exhausting retries",
			"kind", string(o.kind), "id", o.id, "attempts", o.attempts,
			"error", fmt.Sprintf("%v", fmt.Errorf("%w: %v", common.ErrExhausted, err)))
		return
	}
	d, _ := o.backoff.Next()
	o.notAfter = w.now().Add(d)
	w.mu.Unlock()

	w.log.Warn(ctx, "sync operation failed, will retry",
		"kind", string(o.kind), "id", o.id, "attempts", o.attempts, "error", err)
}

func (w *Worker) remove(o *op) {
	w.mu.Lock()
	delete(w.queue, opKey(o))
	w.mu.Unlock()
}

func opKey(o *op) string { return fmt.Sprintf("%c:%s", o.kind, o.id) }

// settle moves the state machine after a pass. Entering error from a
// non-error state notifies exactly once; staying in error stays silent until
// a clean pass resets the episode.
func (w *Worker) settle(ctx context.Context, anyFailed bool) {
	w.mu.Lock()
	var notify bool
	if anyFailed {
		if !w.errored {
			w.errored = true
			notify = true
		}
		w.state = StateError
	} else {
		w.errored = false
		w.state = StateIdle
	}
	w.mu.Unlock()

	if notify && w.notifier != nil {
		w.notifier.Notify(ctx, "sync is failing; changes stay queued and will be retried")
	}
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}
