package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"trackpulse/internal/config"
	apierrors "trackpulse/internal/errors"
	"trackpulse/internal/infrastructure"
	customMiddleware "trackpulse/internal/middleware"
	"trackpulse/internal/services"
	transport "trackpulse/internal/transport/http"
)

// Build metadata, overridable via -ldflags at release time.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// AppName identifies the application in startup logs
const AppName = "trackpulse"

// Application wires configuration, services, and the HTTP server together
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Router        chi.Router
	Server        *http.Server

	TrackService  *services.TrackService
	HealthService *services.HealthService
}

// NewApplication builds a fully wired application from configuration
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		TrackService:  services.NewTrackService(cfg, paths, logger).WithMetrics(metrics),
		HealthService: services.NewHealthService(Version, BuildTime, paths, logger),
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// setupRouter builds the Chi router with the full middleware chain
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.Compress(5))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout, a.Logger))

		r.Mount("/health", transport.NewHealthHandler(a.HealthService, a.Logger).Routes())
		r.Mount("/tracks", transport.NewTrackHandler(
			a.TrackService,
			a.Logger,
			errorHandler,
			a.Config.Server.MaxBodyBytes,
		).Routes())
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// createServer builds the HTTP server from configuration
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown completes. SIGINT and
// SIGTERM trigger a graceful shutdown bounded by the configured timeout.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("reports_dir", a.Paths.ReportsDir))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop shuts down the HTTP server and observability providers
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.InfoContext(shutdownCtx, "shutting down application")

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(shutdownCtx, "server shutdown failed",
			slog.String("error", err.Error()))
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.WarnContext(shutdownCtx, "observability shutdown failed",
			slog.String("error", err.Error()))
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("log file close: %w", err)
	}

	a.Logger.Info("application stopped")
	return nil
}
