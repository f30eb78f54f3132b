// Package server initializes and runs the server of record. It selects the
// storage backend, seeds the admin user, serves the REST interface and shuts
// down gracefully on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cbsr/biobank/internal/logging"
	"github.com/cbsr/biobank/internal/server/config"
	"github.com/cbsr/biobank/internal/server/repositories/repomanager"
	"github.com/cbsr/biobank/internal/server/rest"
	"github.com/cbsr/biobank/internal/server/services"
	"github.com/cbsr/biobank/internal/server/telemetry"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config        *config.Config
	logger        logging.Logger
	repos         repomanager.RepositoryManager
	echo          *echo.Echo
	shutdownTrace func(context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	shutdownTrace, err := telemetry.SetupTracing(ctx, c.TraceEndpoint)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	var metrics *telemetry.Metrics
	if c.MetricsEnabled {
		metrics = telemetry.NewMetrics()
	}

	svc := rest.Services{
		Studies:      services.NewStudyService(repos, logger, metrics),
		Participants: services.NewParticipantService(repos, logger, metrics),
		CeventTypes:  services.NewCeventTypeService(repos, logger, metrics),
		Centres:      services.NewCentreService(repos, logger, metrics),
		Shipments:    services.NewShipmentService(repos, logger, metrics),
		Users:        services.NewUserService(repos, logger, metrics),
	}
	if err := svc.Users.SeedAdmin(ctx, c.AdminEmail, c.AdminPassword); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("admin seed error: %w", err)
	}

	e := rest.NewServer(svc, rest.Options{
		SecretKey:   []byte(c.SecretKey),
		SessionTTL:  c.SessionTTL,
		CORSOrigins: c.CORSOrigins,
		Metrics:     metrics,
	}, logger)

	return &App{config: c, logger: logger, repos: repos, echo: e, shutdownTrace: shutdownTrace}, nil
}

func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.Store {
	case config.StoreMemory:
		return repomanager.NewMemoryRepositoryManager(), nil
	case config.StorePostgres:
		return repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	}
	return nil, fmt.Errorf("unknown store %q", c.Store)
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
	app.logger.Info(ctx, "listening", "addr", app.config.ListenAddr, "store", app.config.Store)
	if err := app.echo.Start(app.config.ListenAddr); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then drains open
// requests and flushes pending spans.
func (app *App) Run(ctx context.Context) error {
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

	<-ctx.Done()
	app.logger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var firstErr error
	if err := app.echo.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("http shutdown error: %w", err)
	}
	wg.Wait()

	if err := app.shutdownTrace(shutdownCtx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("tracing shutdown error: %w", err)
	}
	if err := app.repos.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("db close error: %w", err)
	}
	return firstErr
}
