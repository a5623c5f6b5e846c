package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/stock-valuator/internal/cache"
	"github.com/aristath/stock-valuator/internal/clients/nse"
	"github.com/aristath/stock-valuator/internal/clients/screener"
	"github.com/aristath/stock-valuator/internal/clients/yahoo"
	"github.com/aristath/stock-valuator/internal/config"
	"github.com/aristath/stock-valuator/internal/modules/universe"
	"github.com/aristath/stock-valuator/internal/modules/valuation"
	"github.com/aristath/stock-valuator/internal/scheduler"
	"github.com/aristath/stock-valuator/internal/server"
	"github.com/aristath/stock-valuator/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting stock valuator")

	// Shared quote cache and ticker directory
	quoteCache := cache.New()
	directory := universe.Load(cfg.TickerListPath, log)

	// Data providers
	nseClient := nse.NewClient(cfg.NSEBaseURL, quoteCache, log)
	yahooClient := yahoo.NewClient(cfg.YahooBaseURL, quoteCache, log)
	screenerClient := screener.NewClient(cfg.ScreenerBaseURL, quoteCache, log)

	// Valuation pipeline
	valuationService := valuation.NewService(
		nseClient,
		yahooClient,
		yahooClient,
		screenerClient,
		cfg.ExpectedGrowth,
		log,
	)
	valuationHandler := valuation.NewHandler(valuationService, directory, cfg.SearchLimit, log)

	// Background cache sweep
	sched := scheduler.New(log)
	if err := sched.AddJob("@every 5m", scheduler.NewCacheJanitorJob(quoteCache, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache janitor")
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Valuation: valuationHandler,
		Cache:     quoteCache,
		Directory: directory,
		DevMode:   cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
