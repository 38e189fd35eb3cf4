// Package server initializes and runs the sync server: Postgres for metadata
// mirrors, S3-compatible object storage for media bytes, and an HTTP JSON
// surface for the capture client.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dkovalev/lotkeeper/internal/logging"
	"github.com/dkovalev/lotkeeper/internal/server/config"
	"github.com/dkovalev/lotkeeper/internal/server/httpapi"
	"github.com/dkovalev/lotkeeper/internal/server/migrations"
	"github.com/dkovalev/lotkeeper/internal/server/presign"
	"github.com/dkovalev/lotkeeper/internal/server/repositories/auctions"
	"github.com/dkovalev/lotkeeper/internal/server/repositories/lots"
	"github.com/dkovalev/lotkeeper/internal/server/repositories/media"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := runMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	srv := httpapi.NewServer(c,
		presign.NewService(c),
		auctions.NewPostgresRepository(db),
		lots.NewPostgresRepository(db),
		media.NewPostgresRepository(db),
		logger)

	return &App{config: c, logger: logger, db: db, http: srv}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
