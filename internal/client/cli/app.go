// Package cli is the interactive capture client: a REPL over the local
// store, the upload queue and the background sync worker.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dkovalev/lotkeeper/internal/client/api"
	"github.com/dkovalev/lotkeeper/internal/client/config"
	"github.com/dkovalev/lotkeeper/internal/client/numbering"
	"github.com/dkovalev/lotkeeper/internal/client/store"
	"github.com/dkovalev/lotkeeper/internal/client/syncworker"
	"github.com/dkovalev/lotkeeper/internal/client/upload"
	"github.com/dkovalev/lotkeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config    *config.Config
	store     *store.Store
	numbering *numbering.Service
	apiClient *api.Client
	queue     *upload.Queue
	worker    *syncworker.Worker
	gate      *syncworker.RecordingGate
	log       logging.Logger

	Mode   Mode
	reader *bufio.Reader

	selectedAuction string
	currentLot      string
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	st, err := store.Open(ctx, c.DBPath)
	if err != nil {
		return nil, err
	}

	apiClient := api.New(c.ServerEndpointAddr, c.DeviceToken)
	gate := &syncworker.RecordingGate{}

	a := &App{
		config:    c,
		store:     st,
		numbering: numbering.NewService(st.DB),
		apiClient: apiClient,
		gate:      gate,
		log:       log,
		Mode:      ModeOffline,
		reader:    bufio.NewReader(os.Stdin),
	}

	a.queue = upload.New(st.Media, st.Lots, st.Blobs, apiClient, c.UserID, log)
	a.worker = syncworker.New(apiClient, st.Auctions, st.Lots, st.Media, gate,
		func() bool { return a.Mode == ModeOnline },
		&syncworker.LogNotifier{Log: log}, log)

	return a, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		printlnFn("switched to", string(mode), "mode")
		if mode == ModeOnline {
			// reconnect: re-derive the queue, then sync right away
			_ = a.worker.Recover(context.Background())
			a.worker.Kick()
		}
	}
}

// StartOnlineStatusWatcher probes the server on an interval and flips the
// mode on transitions.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.apiClient.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// Run restores the selected auction, starts the watcher and the sync worker
// and hands control to the REPL. Returns when the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.store.Close()

	a.restoreSelection(ctx)

	if err := a.worker.Recover(ctx); err != nil {
		a.log.Warn(ctx, "sync recovery failed", "error", err)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	go a.worker.Run(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)

	a.cleanupCurrentLot(ctx)
}

func (a *App) status() string {
	s := string(a.Mode)
	if a.selectedAuction != "" {
		s += " " + a.selectedAuction
	}
	if a.currentLot != "" {
		s += "/" + a.currentLot
	}
	return s
}
