package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/postgres"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/ratelimit"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the accounts service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	limiter *ratelimit.SlidingWindow

	// Services
	tokenService        *service.TokenService
	authService         *service.AuthService
	userService         *service.UserService
	mfaService          *service.MFAService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SecretKeyGenerated {
		app.logger.Warn("SECRET_KEY not set, using a random per-process secret; tokens will not survive a restart")
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.seedAdmin(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired HTTP handler, for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Close releases the database without touching the HTTP server. It is meant
// for callers that used Handler instead of Run.
func (app *Application) Close() error {
	return app.db.Close()
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("accounts service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	ctx := context.Background()

	var (
		db     store.Store
		err    error
		driver string
	)
	if app.cfg.UsesPostgres() {
		driver = "postgres"
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	} else {
		driver = "sqlite"
		db, err = sqlite.NewStore(app.cfg.SQLiteDSN())
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s database: %w", driver, err)
	}
	app.db = db

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", driver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	tokens, err := service.NewTokenService(service.TokenConfig{
		Algorithm: app.cfg.Algorithm,
		Secret:    app.cfg.SecretKey,
		TTL:       app.cfg.AccessTokenTTL,
		Leeway:    app.cfg.TokenLeeway,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokenService = tokens

	app.authService = &service.AuthService{Store: app.db, Tokens: tokens}
	app.userService = &service.UserService{Store: app.db}
	app.mfaService = &service.MFAService{Store: app.db, Issuer: app.cfg.ProjectName}
	app.bootstrapService = &service.BootstrapService{Store: app.db}

	app.limiter = ratelimit.NewSlidingWindow(app.cfg.RateLimitPerMinute, ratelimit.DefaultWindow)
	app.housekeepingService = service.NewHousekeepingService(
		app.limiter,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

// seedAdmin creates the configured administrator on first start
func (app *Application) seedAdmin() error {
	seed := service.AdminSeed{
		Username: app.cfg.AdminUsername,
		Password: app.cfg.AdminPassword,
		Name:     app.cfg.AdminName,
	}
	if app.cfg.AdminEmail != "" {
		email := app.cfg.AdminEmail
		seed.Email = &email
	}

	ctx := slogx.WithContext(context.Background(), app.logger)
	if _, err := app.bootstrapService.SeedAdmin(ctx, seed); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	clientKey := httpx.IPKeyExtractor
	if app.cfg.TrustProxy {
		clientKey = httpx.ForwardedIPKeyExtractor
	}

	router := httpapi.NewRouter(httpapi.Options{
		APIPrefix:    app.cfg.APIPrefix,
		ProjectName:  app.cfg.ProjectName,
		BuildVersion: BuildVersion,
		CORSOrigins:  app.cfg.CORSOrigins,
		Limiter:      app.limiter,
		ClientKey:    clientKey,
		LoginLimit:   app.cfg.LoginLimit,
	}, app.db, app.logger)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.MFAService = app.mfaService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
