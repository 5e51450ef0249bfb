// Command api is the QuakeWatch engine API server.
//
// Usage:
//
//	quakewatch-api
//	API_PORT=8080 quakewatch-api

// @title QuakeWatch Engine API
// @version 1.0.0
// @description Earthquake event feed merged with drill events, per-recipient alert thresholds, and SMS fan-out for matching recipients.
// @host localhost:8000
// @BasePath /
// @schemes http https
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/quakewatch/quakewatch/internal/api"
	"github.com/quakewatch/quakewatch/internal/config"
	"github.com/quakewatch/quakewatch/internal/db"
	"github.com/quakewatch/quakewatch/internal/fanout"
	"github.com/quakewatch/quakewatch/internal/feed"
	"github.com/quakewatch/quakewatch/internal/maintenance"
	"github.com/quakewatch/quakewatch/internal/sms"

	_ "github.com/quakewatch/quakewatch/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Upstream feed client
	usgs := feed.NewUSGSClient(cfg.USGSBaseURL, logger)

	// SMS delivery channel; nil gateway disables fan-out delivery
	gateway := sms.NewGateway(cfg.SMSAPIURL, cfg.SMSAPIUsername, cfg.SMSAPIPassword,
		cfg.SMSSimNumber, cfg.DeliveryTimeout, logger)
	if gateway == nil {
		logger.Info("SMS delivery disabled (no SMS_API_USERNAME / SMS_API_PASSWORD)")
	}

	notifier := fanout.New(
		fanout.PGSource{Pool: pool.Pool},
		gateway,
		fanout.PGRecorder{Pool: pool.Pool},
		cfg.DeliveryTimeout,
		logger,
	)

	// Start maintenance tickers (delivery audit and drill cleanup)
	go maintenance.Start(ctx, pool.Pool, maintenance.Config{
		CleanupInterval: cfg.CleanupInterval,
	}, logger)

	// Create router
	router := api.NewRouter(pool.Pool, cfg, usgs, notifier)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting QuakeWatch Engine API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
