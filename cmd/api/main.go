package main

//go:generate go run github.com/swaggo/swag/cmd/swag@latest init -g main.go -o ../../docs --parseDependency

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"saa-api/internal/config"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/paulmach/orb/geojson"

	_ "saa-api/docs" // Import generated docs
)

// @title Sää API
// @version 1.0.0
// @description Weather observations and forecasts from the FMI open data service as GeoJSON
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger) // Set as default logger for the application

	// GeoJSON output is encoded with jsoniter
	geojson.CustomJSONMarshaler = jsoniter.ConfigCompatibleWithStandardLibrary

	app := NewApp(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server
	logger.Info("starting server", "addr", cfg.GetServerAddr())
	if err := app.Run(ctx, cfg.GetServerAddr()); err != nil {
		logger.Error("server failed", "error", err)
		log.Fatal(err)
	}
	logger.Info("server stopped")
}
