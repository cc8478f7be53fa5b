// Package app assembles the platform: configuration, database, services
// and the HTTP server, with graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/hireline/hireline/internal/http"
	"github.com/hireline/hireline/internal/service"
	"github.com/hireline/hireline/internal/store"
	"github.com/hireline/hireline/internal/store/drivers/sqlite"
	"github.com/hireline/hireline/pkg/jwtx"
	"github.com/hireline/hireline/pkg/slogx"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// BuildVersion should be set at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application holds the assembled platform.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.HS256

	tokenService       *service.TokenService
	userService        *service.UserService
	oauthCoordinator   *service.OAuthCoordinator
	jobService         *service.JobService
	applicationService *service.ApplicationService
	analyticsService   *service.AnalyticsService

	server *http.Server
	router *httpapi.Router
}

// New builds an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "hireline",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.signer = jwtx.NewHS256([]byte(cfg.TokenSecret), cfg.Issuer)

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("hireline starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests and releases resources.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Store:      app.db,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
		Issuer:     app.cfg.Issuer,
	}
	app.userService = &service.UserService{
		Store:  app.db,
		Tokens: app.tokenService,
	}
	app.oauthCoordinator = &service.OAuthCoordinator{
		Users:  app.userService,
		Tokens: app.tokenService,
		Config: &oauth2.Config{
			ClientID:     app.cfg.GoogleClientID,
			ClientSecret: app.cfg.GoogleClientSecret,
			RedirectURL:  app.cfg.BackendURL + "/api/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		Keys: jwtx.NewGoogleKeySet(nil),
	}
	app.jobService = &service.JobService{Store: app.db}
	app.applicationService = &service.ApplicationService{Store: app.db}
	app.analyticsService = &service.AnalyticsService{Store: app.db}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.signer, BuildVersion, app.db, app.logger)
	router.Dev = app.cfg.Dev()
	router.FrontendURL = app.cfg.FrontendURL
	router.Cookies = &httpapi.CookieWriter{Secure: !app.cfg.Dev()}

	router.Users = app.userService
	router.Tokens = app.tokenService
	router.OAuth = app.oauthCoordinator
	router.Jobs = app.jobService
	router.Applications = app.applicationService
	router.Analytics = app.analyticsService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
