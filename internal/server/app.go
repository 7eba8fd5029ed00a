// Package server wires configuration, storage, services and the REST API
// together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophnet/internal/logging"
	"github.com/dmitrijs2005/gophnet/internal/server/auth"
	"github.com/dmitrijs2005/gophnet/internal/server/config"
	"github.com/dmitrijs2005/gophnet/internal/server/media"
	"github.com/dmitrijs2005/gophnet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnet/internal/server/rest"
	"github.com/dmitrijs2005/gophnet/internal/server/services"
	"github.com/gin-gonic/gin"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := newMediaStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("media store init error: %w", err)
	}

	tokens := auth.NewTokenService(c.SecretKey, c.TokenValidityDuration)

	fs := services.NewFollowService(db, rm, logger)
	ps := services.NewPublicationService(db, rm, fs, store, c, logger)
	us := services.NewUserService(db, rm, tokens, fs, store, c, logger)

	gin.SetMode(gin.ReleaseMode)
	srv := rest.NewServer(c, logger, tokens, us, fs, ps)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func newMediaStore(ctx context.Context, c *config.Config) (media.Store, error) {
	switch c.MediaBackend {
	case config.MediaBackendLocal:
		return media.NewLocalStore(c.MediaDir)
	case config.MediaBackendS3:
		return media.NewS3Store(ctx, media.S3Config{
			AccessKey: c.S3RootUser,
			SecretKey: c.S3RootPassword,
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown media backend %q", c.MediaBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
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
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
