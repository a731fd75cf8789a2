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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ouvipanel/internal/config"
	"ouvipanel/internal/errors"
	"ouvipanel/internal/infrastructure"
	customMiddleware "ouvipanel/internal/middleware"
	"ouvipanel/internal/services"
	handlers "ouvipanel/internal/transport/http"
)

const (
	Version = "1.2.0"
	AppName = "ouvipanel"
)

// Application is the main application container.
type Application struct {
	Config    *config.Config
	Router    *chi.Mux
	Server    *http.Server
	Dashboard *services.DashboardService
	Metrics   *infrastructure.Metrics
	Registry  *prometheus.Registry
	Logger    *slog.Logger
}

// NewApplication wires configuration, logging, metrics, the dashboard
// service and the HTTP server.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("sources", len(cfg.Datasets.Sources)))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := infrastructure.NewMetrics(registry)

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Metrics:   metrics,
		Dashboard: services.NewDashboardService(cfg, logger, metrics),
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter builds the chi router with the full middleware chain.
// Ordering matters: RequestID first so every later log line carries the
// trace_id, Recoverer before the handlers so panics become JSON 500s.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.Config.Security.AllowedOrigins))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	errorHandler := errors.NewErrorHandler(a.Logger)

	r.Route("/api", func(r chi.Router) {
		healthHandler := handlers.NewHealthHandler(a.Dashboard, Version)
		r.Mount("/health", healthHandler.Routes())

		dashboardHandler := handlers.NewDashboardHandler(
			a.Dashboard,
			a.Logger,
			errorHandler,
			a.Config.Datasets.IncludeUndatedDefault,
		)
		r.Mount("/", dashboardHandler.Routes())
	})

	// Outside the /api group so scrapes skip rate limiting.
	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start launches the HTTP listener and warms the dataset cache in the
// background so the first dashboard request does not pay the load cost.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	go func() {
		warmCtx, warmCancel := context.WithTimeout(ctx, 2*time.Minute)
		defer warmCancel()
		resp := a.Dashboard.Periods(warmCtx)
		for name, status := range resp.Datasets {
			if status.Error != "" {
				a.Logger.WarnContext(warmCtx, "dataset unavailable at startup",
					slog.String("dataset", name),
					slog.String("error", status.Error))
				continue
			}
			a.Logger.InfoContext(warmCtx, "dataset loaded",
				slog.String("dataset", name),
				slog.Int("records", status.Records),
				slog.Int("undated", status.Undated))
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop drains in-flight requests and closes the log file.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
