// Package main is the entry point for the tradebook service: a personal
// trade journal with derived accounting (holdings, profit, dividends,
// analytics) and offline-first sync against a hosted remote store.
//
// Startup sequence:
// 1. Load configuration from environment variables (.env supported)
// 2. Initialize structured logging
// 3. Open the journal database and apply migrations
// 4. Wire repositories, services and the sync engine
// 5. Start the HTTP server and the background sync job
// 6. Wait for shutdown signal and stop gracefully
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/onohta/tradebook/internal/clients/remotestore"
	"github.com/onohta/tradebook/internal/config"
	"github.com/onohta/tradebook/internal/database"
	"github.com/onohta/tradebook/internal/modules/companies"
	"github.com/onohta/tradebook/internal/modules/dividends"
	"github.com/onohta/tradebook/internal/modules/impexp"
	"github.com/onohta/tradebook/internal/modules/journal"
	"github.com/onohta/tradebook/internal/modules/settings"
	"github.com/onohta/tradebook/internal/scheduler"
	"github.com/onohta/tradebook/internal/server"
	syncengine "github.com/onohta/tradebook/internal/sync"
	"github.com/onohta/tradebook/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting tradebook")

	// Journal database
	db, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "journal.db"),
		Profile: database.ProfileJournal,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open journal database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate journal database")
	}

	// Repositories
	journalRepo := journal.NewRepository(db.Conn(), log)
	settingsRepo := settings.NewRepository(db.Conn(), log)

	// Settings overlay (account id, remote key) takes precedence over env
	if err := cfg.UpdateFromSettings(settingsRepo); err != nil {
		log.Warn().Err(err).Msg("Failed to update config from settings, using environment values")
	}

	// Company name registry (optional data file)
	registry := companies.NewRegistry(log)
	if err := registry.LoadFile(cfg.CompanyDataFile); err != nil {
		log.Warn().Err(err).Msg("Failed to load company data")
	}

	// Services
	journalService := journal.NewService(journalRepo, settingsRepo, log)
	dividendsService := dividends.NewService(settingsRepo, log)
	impexpService := impexp.NewService(journalRepo, log)

	// Sync engine, only when a remote store is configured
	var engine *syncengine.Engine
	if cfg.SyncEnabled() {
		remote := remotestore.NewClient(cfg.RemoteBaseURL, cfg.RemoteAPIKey, log)
		engine = syncengine.NewEngine(journalRepo, remote, settingsRepo, cfg, log)
		log.Info().Str("remote", cfg.RemoteBaseURL).Msg("Sync configured")
	} else {
		log.Info().Msg("Sync not configured, running local-only")
	}

	// HTTP server
	srv := server.New(server.Config{
		Log:            log,
		Config:         cfg,
		JournalDB:      db,
		JournalService: journalService,
		DividendsSvc:   dividendsService,
		ImpExpSvc:      impexpService,
		Companies:      registry,
		SyncEngine:     engine,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Background sync job
	sched := scheduler.New(log)
	if engine != nil {
		if err := sched.AddJob(cfg.SyncInterval, scheduler.NewSyncJob(engine, log)); err != nil {
			log.Error().Err(err).Str("schedule", cfg.SyncInterval).Msg("Failed to register sync job")
		}
	}
	sched.Start()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
