// Package server wires the slidedeck services together and runs the HTTP API
// until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/slidedeck/internal/logging"
	"github.com/dmitrijs2005/slidedeck/internal/server/assets"
	"github.com/dmitrijs2005/slidedeck/internal/server/config"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/slidedeck/internal/server/services"

	hs "github.com/dmitrijs2005/slidedeck/internal/server/http"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *hs.Server
}

// NewApp opens the database, applies pending migrations and builds the
// services behind the HTTP API.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := assets.NewStore(ctx, c, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("asset store init error: %w", err)
	}

	srv := hs.NewServer(c.EndpointAddrHTTP, logger, hs.Services{
		Users:         services.NewUserService(db, m, c, logger),
		Presentations: services.NewPresentationService(db, m),
		Slides:        services.NewSlideService(db, m, logger),
		Elements:      services.NewElementService(db, m, store, logger),
		Assets:        store,
	}, c.MaxUploadBytes)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
