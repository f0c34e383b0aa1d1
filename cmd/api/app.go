package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"saa-api/internal/config"
	"saa-api/internal/forecast"
	"saa-api/internal/observations"
	"saa-api/internal/providers/fmi"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates application dependencies
type App struct {
	router             *gin.Engine
	logger             *slog.Logger
	observationService observations.Service
	forecastService    forecast.Service
	cfg                *config.Config
}

// NewApp creates a new application wired to the FMI open data service
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	client := fmi.NewClient(cfg.FMI.BaseURL, cfg.FMI.Timeout, logger)

	return NewAppWithServices(
		cfg,
		logger,
		observations.NewObservationService(client, logger),
		forecast.NewForecastService(client, logger),
	)
}

// NewAppWithServices creates a new application with injected services.
// This is useful for testing with mock services.
func NewAppWithServices(
	cfg *config.Config,
	logger *slog.Logger,
	observationService observations.Service,
	forecastService forecast.Service,
) *App {
	// Set Gin mode from configuration
	gin.SetMode(cfg.Server.GinMode)

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery(), requestID(), requestLogger(logger))

	app := &App{
		router:             router,
		logger:             logger,
		observationService: observationService,
		forecastService:    forecastService,
		cfg:                cfg,
	}

	// Register routes
	app.registerRoutes()

	return app
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully
func (app *App) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
