package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/clients/yahoo"
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/config"
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/database"
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/indicators"
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/locking"
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/marketdata"
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/scheduler"
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/server"
	"github.com/Colin579M/AStock-AI-Agent-sub001/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		errLog := logger.New(logger.Config{Level: "error"})
		errLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting indicator service")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire the resolution pipeline
	fetcher := yahoo.NewClient(log)
	cache := marketdata.NewCache(cfg.DataCacheDir, cfg.LookbackYears, fetcher, log)
	engine := indicators.NewTalibEngine()
	history := indicators.NewHistoryRepository(db.Conn(), log)
	resolver := indicators.NewResolver(cfg.DataDir, cache, engine, history, log)
	handlers := indicators.NewHandlers(resolver, engine, history, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	locks := locking.NewManager(filepath.Join(cfg.DataCacheDir, "locks"), log)

	var prefetch scheduler.Job
	if len(cfg.PrefetchSymbols) > 0 {
		prefetch = scheduler.NewPrefetchJob(scheduler.PrefetchConfig{
			Log:         log,
			LockManager: locks,
			Cache:       cache,
			Symbols:     cfg.PrefetchSymbols,
		})

		if err := sched.AddJob(cfg.PrefetchSchedule, prefetch); err != nil {
			log.Fatal().Err(err).Msg("Failed to register prefetch job")
		}
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:       cfg.Port,
		Log:        log,
		Indicators: handlers,
		Scheduler:  sched,
		Prefetch:   prefetch,
		DevMode:    cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
