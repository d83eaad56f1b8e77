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

	"github.com/flowency/kavostack/internal/backend/domain"
	httpapi "github.com/flowency/kavostack/internal/backend/http"
	"github.com/flowency/kavostack/internal/backend/service"
	"github.com/flowency/kavostack/internal/backend/store"
	"github.com/flowency/kavostack/internal/backend/store/drivers/sqlite"
	"github.com/flowency/kavostack/pkg/cryptox"
	"github.com/flowency/kavostack/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the backend with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	sessionService    *service.SessionService
	invitationService *service.InvitationService
	bootstrapService  *service.BootstrapService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized, migrations
// applied, and seed data in place.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "kavostack",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.seed(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("backend starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down backend...")

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

	app.logger.Info("backend stopped")
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		app.cfg.DatabaseFile,
	)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:  app.db,
		Secret: []byte(app.cfg.SessionSecret),
		TTL:    app.cfg.SessionTTL,
	}
	app.invitationService = &service.InvitationService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{Store: app.db}
}

// seed applies the idempotent boot-time seed: the initial super-admin
// account and, optionally, a demo tenant.
func (app *Application) seed() error {
	// No seed configured at all is fine; a partial seed is a boot error.
	if app.cfg.AdminEmail == "" && app.cfg.AdminPassword == "" && !app.cfg.CreateDemoClient {
		return nil
	}

	ctx := slogx.WithContext(context.Background(), app.logger)
	err := app.bootstrapService.Seed(ctx, domain.BootstrapData{
		AdminEmail:       app.cfg.AdminEmail,
		AdminName:        app.cfg.AdminName,
		AdminPassword:    app.cfg.AdminPassword,
		CreateDemoClient: app.cfg.CreateDemoClient,
	})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	return nil
}

// initHTTP sets up the router and the HTTP server.
func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.sessionService,
		app.invitationService,
		app.logger,
	)
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
