// Package app initializes and runs the main application service.
// It configures logging, storage, identity, media and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/biolink/internal/auth"
	"github.com/patric-chuzhbe/biolink/internal/config"
	"github.com/patric-chuzhbe/biolink/internal/db/jsondb"
	"github.com/patric-chuzhbe/biolink/internal/db/memorystorage"
	"github.com/patric-chuzhbe/biolink/internal/db/postgresdb"
	"github.com/patric-chuzhbe/biolink/internal/db/storage"
	"github.com/patric-chuzhbe/biolink/internal/editor"
	"github.com/patric-chuzhbe/biolink/internal/identity"
	"github.com/patric-chuzhbe/biolink/internal/ipchecker"
	"github.com/patric-chuzhbe/biolink/internal/logger"
	"github.com/patric-chuzhbe/biolink/internal/mediastore"
	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/router"
	"github.com/patric-chuzhbe/biolink/internal/theme"
)

// App encapsulates the configuration, HTTP handler, storage backend and
// the per-user editing sessions needed to run the service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	sessions    *editor.Registry
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - setting up identity, media storage and the editing session registry
// - setting up the router and middleware
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	authCookieSigningSecretKey, err := base64.URLEncoding.DecodeString(app.cfg.AuthCookieSigningSecretKey)
	if err != nil {
		return nil, err
	}

	identityProvider := identity.NewLocal(app.db, app.cfg.RequireEmailConfirmation)

	media := mediastore.New(app.cfg.MediaDir, app.cfg.PublicBaseURL)

	themes := theme.NewRegistry()

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.sessions = editor.NewRegistry(editor.Options{
		DB:            app.db,
		Media:         media,
		MediaBucket:   app.cfg.MediaBucket,
		MaxUploadSize: app.cfg.MaxUploadSize,
		SaveDelay:     app.cfg.SaveDebounceDelay,
		NoticeTTL:     app.cfg.NoticeTTL,
		Themes:        themes,
	})

	app.httpHandler = router.New(
		app.db,
		identityProvider,
		auth.New(
			app.cfg.AuthCookieName,
			authCookieSigningSecretKey,
		),
		app.sessions,
		themes,
		checker,
		media.RootDir(),
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals, flushes pending saves and cleans up
// resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

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
		logger.Log.Infoln("Received shutdown signal. Flushing pending saves and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		a.sessions.FlushAll(shutdownCtx)

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
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
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
