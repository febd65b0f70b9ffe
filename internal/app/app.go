package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"staypulse/internal/config"
	"staypulse/internal/dataprocessing"
	apierrors "staypulse/internal/errors"
	"staypulse/internal/files"
	"staypulse/internal/infrastructure"
	customMiddleware "staypulse/internal/middleware"
	"staypulse/internal/services"
	handlers "staypulse/internal/transport/http"
	ws "staypulse/internal/websocket"
	"staypulse/pkg/contracts"
)

const AppName = "StayPulse"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ListingMetrics
	Runtime       *infrastructure.RuntimeMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Hub           *ws.Hub
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Listings *services.ListingService
	Health   *services.HealthService
}

// NewApplication initialises telemetry, loads the listings source once and
// wires the HTTP surface. A source that cannot be loaded is fatal.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateListingMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing metrics: %w", err)
	}

	table, report, err := LoadListings(context.Background(), cfg, logger, metrics)
	if err != nil {
		providers.Shutdown(context.Background())
		return nil, err
	}

	return newApplication(cfg, logger, providers, metrics, table, report)
}

// NewApplicationWithTable wires the application around an already loaded
// table. Telemetry uses no-op providers.
func NewApplicationWithTable(cfg *config.Config, logger *slog.Logger, table *dataprocessing.Table, report *dataprocessing.LoadReport) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	telemetry := cfg.Telemetry
	telemetry.TracesExporter = "none"
	telemetry.MetricsEnabled = false
	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateListingMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing metrics: %w", err)
	}
	return newApplication(cfg, logger, providers, metrics, table, report)
}

// LoadListings reads and cleans the configured source
func LoadListings(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *infrastructure.ListingMetrics) (*dataprocessing.Table, *dataprocessing.LoadReport, error) {
	start := time.Now()
	source, err := files.NewDiscovery("", logger).Resolve(cfg.Data.Source)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to resolve listings source",
			slog.String("source", cfg.Data.Source),
			slog.String("error", err.Error()))
		return nil, nil, err
	}

	table, report, err := dataprocessing.Load(source, dataprocessing.LoadOptions{
		Sheet:             cfg.Data.Sheet,
		MinNightsQuantile: cfg.Thresholds.MinNightsQuantile,
		Logger:            logger,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load listings",
			slog.String("source", cfg.Data.Source),
			slog.String("error", err.Error()))
		return nil, nil, err
	}

	metrics.RecordLoad(ctx, report.Rows, report.Duplicates, report.OutOfRange, report.ParseFailures)
	logger.InfoContext(ctx, "Listings loaded",
		slog.Any("report", report),
		slog.Duration("duration", time.Since(start)))
	return table, report, nil
}

func newApplication(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders, metrics *infrastructure.ListingMetrics, table *dataprocessing.Table, report *dataprocessing.LoadReport) (*Application, error) {
	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := a.initializeServices(table, report); err != nil {
		providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.Telemetry.MetricsEnabled && cfg.Telemetry.RuntimeInterval > 0 {
		runtimeMetrics, err := infrastructure.NewRuntimeMetrics(providers.Meter)
		if err != nil {
			providers.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
		}
		a.Runtime = runtimeMetrics
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(table *dataprocessing.Table, report *dataprocessing.LoadReport) error {
	listings, err := services.NewListingService(services.ListingServiceConfig{
		Table:      table,
		Report:     report,
		Thresholds: a.Config.Thresholds,
		Metrics:    a.Metrics,
		Tracer:     a.OTelProviders.Tracer,
		Logger:     a.Logger,
	})
	if err != nil {
		return err
	}

	a.Hub = ws.NewHub(a.Metrics, a.Logger)

	health := services.NewHealthService(services.HealthServiceConfig{
		Version:   contracts.Version,
		BuildTime: contracts.BuildTime,
		GitCommit: contracts.GitCommit,
		Listings:  listings,
		Sessions:  a.Hub,
		Logger:    a.Logger,
	})

	a.Services = &ServiceContainer{
		Listings: listings,
		Health:   health,
	}
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Ordering: RequestID, RealIP, OTel, logger, recoverer, then per-group limits.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(a.ErrorHandler.Middleware)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// The session socket must not be wrapped by timeouts or compression
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws/session", ws.NewHandler(ws.HandlerConfig{
		Listings:       a.Services.Listings,
		Hub:            a.Hub,
		WebSocket:      a.Config.WebSocket,
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		RequestTimeout: a.Config.Server.RequestTimeout,
		ErrorHandler:   a.ErrorHandler,
		Logger:         a.Logger,
	}))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.Config.Security))
		}
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.ErrorHandler, a.Logger).Handler)
		}
		if a.Config.Server.RequestTimeout > 0 {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		}
		r.Use(customMiddleware.StripSlashes)

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Mount("/healthz", healthHandler.Routes())

		r.Route("/api", func(r chi.Router) {
			r.With(render.SetContentType(render.ContentTypeJSON)).Get("/version", healthHandler.Version)

			r.Route("/v1", func(r chi.Router) {
				r.With(customMiddleware.Compress(5, "application/json", "text/csv")).
					Mount("/listings", handlers.NewListingsHandler(a.Services.Listings, a.Logger, a.ErrorHandler).Routes())
				r.Post("/client-logs", handlers.NewClientLogHandler(a.Logger, a.ErrorHandler).Handle)
			})
		})
	})

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	s := a.Config.Server
	a.Server = &http.Server{
		Addr:           s.Addr(),
		Handler:        a.Router,
		ReadTimeout:    s.ReadTimeout,
		WriteTimeout:   s.WriteTimeout,
		IdleTimeout:    s.IdleTimeout,
		MaxHeaderBytes: s.MaxHeaderBytes,
	}
}

// Run serves until ctx is cancelled or the server fails, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	report := a.Services.Listings.Report()
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.Int("rows", a.Services.Listings.Table().Len()),
		slog.String("level", a.Config.Logging.Level))
	if report != nil {
		a.Logger.DebugContext(ctx, "Serving listings", slog.Any("report", report))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if a.Runtime != nil {
		g.Go(func() error {
			return a.Runtime.Run(gctx, a.Config.Telemetry.RuntimeInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by the server
	a.Hub.Shutdown(shutdownCtx)

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}
