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

	httpapi "github.com/opshelm/warden/internal/users/http"
	"github.com/opshelm/warden/internal/users/policy"
	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/internal/users/store/drivers/sqlite"
	"github.com/opshelm/warden/pkg/cryptox"
	"github.com/opshelm/warden/pkg/jwtx"
	"github.com/opshelm/warden/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the user service together: database, token signer,
// business services, housekeeping worker and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.HS256

	authService         *service.AuthService
	userService         *service.UserService
	lockoutService      *service.LockoutService
	sessionService      *service.SessionService
	auditService        *service.AuditService
	organizationService *service.OrganizationService
	invitationService   *service.InvitationService
	preferencesService  *service.PreferencesService
	bulkService         *service.BulkService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "warden",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := jwtx.NewHS256(cfg.JWTSecret, cfg.Issuer)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("warden starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully stops the server, the housekeeping worker and the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down warden...")

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

	app.logger.Info("warden stopped")
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
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
	pwPolicy := policy.Default()

	app.auditService = &service.AuditService{Store: app.db}

	app.lockoutService = &service.LockoutService{
		Store: app.db,
		Config: service.LockoutConfig{
			MaxAttempts:     app.cfg.LockoutMaxAttempts,
			LockoutDuration: app.cfg.LockoutDuration,
			AttemptWindow:   app.cfg.LockoutAttemptWindow,
		},
	}

	app.sessionService = &service.SessionService{
		Store:      app.db,
		TTL:        app.cfg.SessionTTL,
		MaxPerUser: app.cfg.MaxSessionsPerUser,
	}

	app.authService = &service.AuthService{
		Store:     app.db,
		Signer:    app.signer,
		Policy:    pwPolicy,
		Lockouts:  app.lockoutService,
		Sessions:  app.sessionService,
		Audit:     app.auditService,
		Issuer:    app.cfg.Issuer,
		AccessTTL: app.cfg.AccessTokenTTL,
	}

	app.userService = &service.UserService{
		Store:  app.db,
		Policy: pwPolicy,
		Audit:  app.auditService,
	}

	app.organizationService = &service.OrganizationService{Store: app.db}

	app.invitationService = &service.InvitationService{
		Store: app.db,
		Auth:  app.authService,
		TTL:   app.cfg.InvitationTTL,
	}

	app.preferencesService = &service.PreferencesService{Store: app.db}

	app.bulkService = &service.BulkService{
		Store: app.db,
		Users: app.userService,
		Audit: app.auditService,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.sessionService,
		app.invitationService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.LockoutService = app.lockoutService
	router.SessionService = app.sessionService
	router.AuditService = app.auditService
	router.OrganizationService = app.organizationService
	router.InvitationService = app.invitationService
	router.PreferencesService = app.preferencesService
	router.BulkService = app.bulkService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
