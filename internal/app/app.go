// Package app wires configuration, logging, observability, services and the
// HTTP router into a runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"datadeck/internal/config"
	"datadeck/internal/errors"
	"datadeck/internal/exporter"
	"datadeck/internal/infrastructure"
	"datadeck/internal/inventory"
	custommw "datadeck/internal/middleware"
	"datadeck/internal/operations"
	"datadeck/internal/services"
	handlers "datadeck/internal/transport/http"
	ws "datadeck/internal/websocket"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = ""
)

// Application is the assembled server with all its dependencies.
type Application struct {
	Config *config.Config
	Paths  *config.Paths
	Router *chi.Mux
	Server *http.Server
	Logger *slog.Logger

	Hub           *ws.Hub
	Store         inventory.Store
	DatasetSvc    *services.DatasetService
	InventorySvc  *services.InventoryService
	HealthSvc     *services.HealthService
	OTelProviders *infrastructure.OTelProviders
}

// NewApplication loads configuration and builds the full dependency graph.
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
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	store, err := newStore(cfg, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to open product store: %w", err)
	}

	hub := ws.NewHub(logger)

	csv := exporter.NewCSVWriter(paths)
	excel := exporter.NewExcelWriter(paths)
	manager := operations.NewManager(logger, hub)

	datasetSvc := services.NewDatasetService(manager, csv, excel, logger)
	datasetSvc.SetImputeWorkers(cfg.Datasets.ImputeWorkers)
	inventorySvc := services.NewInventoryService(store, csv, excel, logger)
	healthSvc := services.NewHealthService(Version, BuildTime, store, datasetSvc)

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		Hub:           hub,
		Store:         store,
		DatasetSvc:    datasetSvc,
		InventorySvc:  inventorySvc,
		HealthSvc:     healthSvc,
		OTelProviders: otelProviders,
	}

	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// newStore selects the configured store backend.
func newStore(cfg *config.Config, paths *config.Paths) (inventory.Store, error) {
	switch cfg.Inventory.Store {
	case "sqlite":
		return inventory.NewSQLiteStore(paths.DBPath)
	default:
		return inventory.NewMemoryStore(), nil
	}
}

// buildRouter assembles the middleware chain and mounts all handlers.
func (a *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	cfg := a.Config
	logger := a.Logger

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	if cfg.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: cfg.Security.AllowedOrigins,
		}))
	}
	if cfg.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	if a.OTelProviders != nil && a.OTelProviders.Meter != nil {
		if metrics, err := infrastructure.NewRequestMetrics(a.OTelProviders.Meter); err == nil {
			r.Use(custommw.RequestMetrics(metrics))
		} else {
			logger.Warn("request metrics disabled", slog.String("error", err.Error()))
		}
	}

	errorHandler := errors.NewErrorHandler(logger, cfg.Logging.Level == "debug")

	datasetHandler := handlers.NewDatasetHandler(a.DatasetSvc, cfg.Datasets.MaxUploadBytes, logger, errorHandler)
	inventoryHandler := handlers.NewInventoryHandler(a.InventorySvc, cfg.Inventory.SampleSize, logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthSvc, logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		// Cleaning can outlive the default request timeout on wide files.
		r.With(custommw.Timeout(cfg.Server.CleanTimeout, logger)).
			Mount("/datasets", datasetHandler.Routes())
		r.Mount("/inventory", inventoryHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
	})

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(a.Hub, cfg.WebSocket, w, req)
	})

	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Method(http.MethodGet, "/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errorHandler.HandleError(w, req, errors.New(http.StatusNotFound, "NOT_FOUND", "Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		errorHandler.HandleError(w, req, errors.New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"))
	})

	return r
}

// Run starts the hub and HTTP server and blocks until shutdown.
func (a *Application) Run(ctx context.Context) error {
	a.Hub.Start()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Info("context cancelled, shutting down")
	}

	return a.Shutdown()
}

// Shutdown stops the server, hub and providers gracefully.
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}

	a.Hub.Stop()

	if err := a.Store.Close(); err != nil {
		a.Logger.Error("store close failed", slog.String("error", err.Error()))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.Error("otel shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return err
	}

	a.Logger.Info("shutdown complete", slog.Duration("timeout", a.Config.Server.ShutdownTimeout))
	return nil
}
