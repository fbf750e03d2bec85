// Command api serves the latest match report over HTTP.
//
// Usage:
//
//	sheets-api
//	SHEETS_INPUT_DIR="Premier League" API_PORT=8080 sheets-api
//	sheets-api --config sheets.yaml

// @title Scoracle Sheets API
// @version 1.0.0
// @description Per-team match statistics flattened into match and team summary tables, served as JSON or as an xlsx workbook.
// @host localhost:8000
// @BasePath /
// @schemes http https
// @contact.name Scoracle
// @license.name MIT
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/scoracle-sheets/internal/api"
	"github.com/albapepper/scoracle-sheets/internal/api/handler"
	"github.com/albapepper/scoracle-sheets/internal/cache"
	"github.com/albapepper/scoracle-sheets/internal/config"
	"github.com/albapepper/scoracle-sheets/internal/db"
	"github.com/albapepper/scoracle-sheets/internal/loader"
	"github.com/albapepper/scoracle-sheets/internal/pipeline"

	_ "github.com/albapepper/scoracle-sheets/docs" // swagger docs
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Record source
	var (
		src    loader.Source = loader.Dir(cfg.InputDir)
		health handler.HealthChecker
	)
	if cfg.Source == config.SourcePostgres {
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
		src = loader.Postgres(pool)
		health = pool
	}

	// Initialize cache
	appCache := cache.New(ctx, cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	store := pipeline.NewStore(src, cfg.Workers, cfg.ReportTTL, logger)

	// Warm the first report; a failure here is served as 503 until data appears.
	if _, err := store.Current(ctx); err != nil {
		logger.Warn("Initial report build failed", "source", cfg.Source, "folder", cfg.InputDir, "error", err)
	}

	router := api.NewRouter(store, health, appCache, cfg, logger)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Scoracle Sheets API",
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
