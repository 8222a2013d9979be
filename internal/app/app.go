// Package app initializes and runs the bookmarking API service.
// It configures logging, storage, authentication, and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/brainly/internal/auth"
	"github.com/patric-chuzhbe/brainly/internal/config"
	"github.com/patric-chuzhbe/brainly/internal/db/jsondb"
	"github.com/patric-chuzhbe/brainly/internal/db/memorystorage"
	"github.com/patric-chuzhbe/brainly/internal/db/postgresdb"
	"github.com/patric-chuzhbe/brainly/internal/db/storage"
	"github.com/patric-chuzhbe/brainly/internal/ipchecker"
	"github.com/patric-chuzhbe/brainly/internal/logger"
	"github.com/patric-chuzhbe/brainly/internal/models"
	"github.com/patric-chuzhbe/brainly/internal/router"
	"github.com/patric-chuzhbe/brainly/internal/service"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the configuration, HTTP handler and storage backend
// needed to run the service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - wiring the auth, service and router layers
func New(options ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(options...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel, app.cfg.Env)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, errors.Join(err, app.db.Close())
	}

	theAuth := auth.New(
		[]byte(app.cfg.SecretKey),
		app.cfg.TokenTTL,
		auth.WithRequireBearerPrefix(app.cfg.RequireBearerPrefix),
	)

	svc := service.New(
		app.db,
		theAuth,
		service.WithBcryptCost(app.cfg.BcryptCost),
		service.WithShareHashLength(app.cfg.ShareHashLength),
		service.WithShareHashMaxAttempts(app.cfg.ShareHashMaxAttempts),
	)

	app.httpHandler = router.New(
		svc,
		theAuth,
		checker,
		app.cfg.CORSAllowedOrigins,
		app.cfg.Env,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr, "env", a.cfg.Env)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing storage and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return errors.Join(fmt.Errorf("server error: %w", err), a.db.Close())
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		logger.Log.Infoln("using PostgreSQL storage")
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case models.StorageTypeFile:
		logger.Log.Infoln("using JSON file storage", "path", cfg.DBFileName)
		return jsondb.New(cfg.DBFileName)
	}

	logger.Log.Infoln("using in-memory storage")
	return memorystorage.New()
}
