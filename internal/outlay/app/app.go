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

	httpapi "github.com/outlaydev/outlay/internal/outlay/http"
	"github.com/outlaydev/outlay/internal/outlay/service"
	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/internal/outlay/store/drivers/sqlite"
	"github.com/outlaydev/outlay/pkg/cryptox"
	"github.com/outlaydev/outlay/pkg/jwtx"
	"github.com/outlaydev/outlay/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the Outlay service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.Signer

	userService         *service.UserService
	mfaService          *service.MFAService
	webauthnService     *service.WebAuthnService
	teamService         *service.TeamService
	categoryService     *service.CategoryService
	expenseService      *service.ExpenseService
	reportService       *service.ReportService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "outlay",
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
	if err := app.initSigner(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	if err := app.maybeBootstrap(context.Background()); err != nil {
		return err
	}

	app.logger.Info("outlay service starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down outlay service...")

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

	app.logger.Info("outlay service stopped")
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

// initSigner loads the Ed25519 signing key, or generates one. Without a
// key file configured, tokens do not survive a restart.
func (app *Application) initSigner() error {
	if app.cfg.SigningKeyFile == "" {
		signer, err := jwtx.NewSigner("outlay-ephemeral")
		if err != nil {
			return fmt.Errorf("failed to generate signing key: %w", err)
		}
		app.signer = signer
		app.logger.Warn("using ephemeral signing key, sessions will not survive restarts")
		return nil
	}

	pemKey, err := os.ReadFile(app.cfg.SigningKeyFile)
	if os.IsNotExist(err) {
		signer, genErr := jwtx.NewSigner("outlay-1")
		if genErr != nil {
			return fmt.Errorf("failed to generate signing key: %w", genErr)
		}
		pemKey, genErr = signer.MarshalPEM()
		if genErr != nil {
			return fmt.Errorf("failed to encode signing key: %w", genErr)
		}
		if genErr = os.WriteFile(app.cfg.SigningKeyFile, pemKey, 0o600); genErr != nil {
			return fmt.Errorf("failed to persist signing key: %w", genErr)
		}
		app.signer = signer
		app.logger.Info("generated new signing key", "file", app.cfg.SigningKeyFile)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read signing key: %w", err)
	}

	signer, err := jwtx.NewSignerFromPEM("outlay-1", pemKey)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}
	app.signer = signer
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	rp, err := service.NewRelyingParty(app.cfg.RPDisplayName, app.cfg.RPID, app.cfg.RPOrigins)
	if err != nil {
		return fmt.Errorf("failed to configure webauthn relying party: %w", err)
	}

	sessions := &service.SessionIssuer{
		Signer: app.signer,
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.SessionTTL,
	}

	app.webauthnService = &service.WebAuthnService{Store: app.db, RP: rp}
	app.userService = &service.UserService{Store: app.db, Sessions: sessions}
	app.mfaService = &service.MFAService{
		Store:    app.db,
		WebAuthn: app.webauthnService,
		Sessions: sessions,
		Issuer:   app.cfg.RPDisplayName,
	}
	app.teamService = &service.TeamService{Store: app.db}
	app.categoryService = &service.CategoryService{Store: app.db, Teams: app.teamService}
	app.expenseService = &service.ExpenseService{Store: app.db, Teams: app.teamService}
	app.reportService = &service.ReportService{Store: app.db, Teams: app.teamService}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

// maybeBootstrap seeds an admin invite on an empty database so the first
// operator can activate through the normal enrollment flow. The one-time
// token is logged once and never stored in the clear.
func (app *Application) maybeBootstrap(ctx context.Context) error {
	if app.cfg.BootstrapEmail == "" {
		return nil
	}

	empty, err := app.db.Users().IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing users: %w", err)
	}
	if !empty {
		return nil
	}

	if app.cfg.BootstrapToken != "" {
		user, err := app.userService.InviteUserWithToken(ctx, app.cfg.BootstrapEmail, app.cfg.BootstrapName, "admin", "system", app.cfg.BootstrapToken)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		app.logger.Info("bootstrap admin invited", "email", user.Email)
		return nil
	}

	user, token, err := app.userService.InviteUser(ctx, app.cfg.BootstrapEmail, app.cfg.BootstrapName, "admin", "system")
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	app.logger.Info("bootstrap admin invited",
		"email", user.Email,
		"activation_token", token,
	)
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		app.signer,
		app.cfg.Issuer,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.UserService = app.userService
	router.MFAService = app.mfaService
	router.WebAuthnService = app.webauthnService
	router.TeamService = app.teamService
	router.CategoryService = app.categoryService
	router.ExpenseService = app.expenseService
	router.ReportService = app.reportService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
