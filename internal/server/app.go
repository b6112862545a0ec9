// Package server initializes and runs the Cloud Capsule backend. It wires
// configuration, logging, the database with its migrations, the blob store
// and the services, and handles graceful shutdown on OS signals.
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

	"github.com/cloudcapsule/cloudcapsule/internal/logging"
	"github.com/cloudcapsule/cloudcapsule/internal/server/config"
	"github.com/cloudcapsule/cloudcapsule/internal/server/httpapi"
	"github.com/cloudcapsule/cloudcapsule/internal/server/mailer"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/repomanager"
	"github.com/cloudcapsule/cloudcapsule/internal/server/services"
	"github.com/cloudcapsule/cloudcapsule/internal/server/storage"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	capsuleService *services.CapsuleService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	blobs, err := storage.NewS3Storage(ctx, storage.Options{
		RootUser:     cfg.S3RootUser,
		RootPassword: cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	ml := mailer.NewLogMailer(logger)
	us := services.NewUserService(db, rm, ml, cfg)
	cs := services.NewCapsuleService(db, rm, blobs, logger)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		userService:    us,
		capsuleService: cs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.userService, app.capsuleService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
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
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
