// Package httpapi is the server's HTTP surface: presign endpoints, the
// idempotent sync upserts and a connectivity probe, all JSON over a stdlib
// mux behind bearer-token auth.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dkovalev/lotkeeper/internal/logging"
	"github.com/dkovalev/lotkeeper/internal/server/config"
	"github.com/dkovalev/lotkeeper/internal/server/repositories/auctions"
	"github.com/dkovalev/lotkeeper/internal/server/repositories/lots"
	"github.com/dkovalev/lotkeeper/internal/server/repositories/media"
)

// Presigner is the object-storage half the handlers need.
type Presigner interface {
	Exists(ctx context.Context, key string) (bool, string, error)
	SignPut(ctx context.Context, key, contentType string) (string, error)
	SignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Server wires the handlers to their dependencies.
type Server struct {
	config   *config.Config
	presign  Presigner
	auctions auctions.Repository
	lots     lots.Repository
	media    media.Repository
	log      logging.Logger
}

func NewServer(c *config.Config, p Presigner, a auctions.Repository, l lots.Repository, m media.Repository, log logging.Logger) *Server {
	return &Server{config: c, presign: p, auctions: a, lots: l, media: m, log: log}
}

// Router builds the route table. Ping stays open; everything else requires
// a valid device token.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.handlePing)

	mux.Handle("POST /api/sign-upload", s.withAuth(http.HandlerFunc(s.handleSignUpload)))
	mux.Handle("POST /api/sign-download", s.withAuth(http.HandlerFunc(s.handleSignDownload)))
	mux.Handle("PUT /api/sync/auctions", s.withAuth(http.HandlerFunc(s.handleSyncAuction)))
	mux.Handle("PUT /api/sync/lots", s.withAuth(http.HandlerFunc(s.handleSyncLot)))
	mux.Handle("PUT /api/sync/media", s.withAuth(http.HandlerFunc(s.handleSyncMedia)))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.EndpointAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info(ctx, "http server listening", "addr", s.config.EndpointAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
