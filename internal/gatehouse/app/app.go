package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	httpapi "github.com/hwylde/gatehouse/internal/gatehouse/http"
	"github.com/hwylde/gatehouse/internal/gatehouse/secrets"
	"github.com/hwylde/gatehouse/internal/gatehouse/service"
	"github.com/hwylde/gatehouse/internal/gatehouse/store"
	"github.com/hwylde/gatehouse/internal/gatehouse/store/memory"
	"github.com/hwylde/gatehouse/internal/gatehouse/store/sqlite"
	"github.com/hwylde/gatehouse/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	kv      store.KV
	secrets secrets.Store

	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gatehouse",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		secrets: secrets.NewEnvStore(),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.authService = service.NewAuthService(app.secrets, app.kv)
	app.housekeepingService = service.NewHousekeepingService(
		app.kv,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("gatehouse starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully stops the server, housekeeping worker and store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gatehouse...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.kv.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("gatehouse stopped")
	return nil
}

// initStore selects the KV driver. A configured database file gets the
// durable SQLite store; otherwise state lives in process memory and is lost
// on restart.
func (app *Application) initStore() error {
	if app.cfg.DatabaseFile == "" {
		app.kv = memory.NewStore()
		app.logger.Warn("no AUTH_DATABASE_FILE configured, lockouts and revocations will not survive a restart")
		return nil
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	kv, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	if err := kv.ApplyMigrations(); err != nil {
		_ = kv.Close()
		return fmt.Errorf("failed to apply store migrations: %w", err)
	}

	app.kv = kv
	app.logger.Info("store migrations applied", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.authService,
		app.kv,
		app.secrets,
		BuildVersion,
		app.logger,
	)
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
