package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/update-comb/app/api"
	"github.com/lysyi3m/update-comb/app/cfg"
	"github.com/lysyi3m/update-comb/app/config"
	"github.com/lysyi3m/update-comb/app/database"
	"github.com/lysyi3m/update-comb/app/ledger"
	"github.com/lysyi3m/update-comb/app/notifier"
	"github.com/lysyi3m/update-comb/app/page"
	"github.com/lysyi3m/update-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Update Comb", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	endpoints := config.NewCache(appCfg.LocalesFile)
	if err := endpoints.Run(); err != nil {
		slog.Error("Failed to load locale endpoints", "file", appCfg.LocalesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Locale endpoints loaded", "file", appCfg.LocalesFile, "count", endpoints.Count())

	watcher, err := config.NewWatcher(endpoints)
	if err != nil {
		slog.Error("Failed to watch locale endpoints file", "error", err)
		os.Exit(1)
	}
	watcher.Start()
	defer watcher.Stop()

	trackingRepo := database.NewTrackingRepository(db)
	ledgerRepo := database.NewLedgerRepository(db)
	subRepo := database.NewSubscriptionRepository(db)
	changeRepo := database.NewChangeSignalRepository(db)

	httpClient := &http.Client{Timeout: time.Duration(appCfg.FetchTimeout) * time.Second}

	scheduler := tasks.NewScheduler(endpoints, trackingRepo, ledgerRepo, httpClient,
		page.NewExtractor(), page.NewDetector(), ledger.NewAssigner())
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)

	if appCfg.TelegramToken != "" {
		notifySvc, err := notifier.NewService(endpoints, ledgerRepo, subRepo, changeRepo)
		if err != nil {
			slog.Error("Failed to start notifier", "error", err)
			os.Exit(1)
		}
		notifySvc.Start()
		defer notifySvc.Stop()
	} else {
		slog.Warn("Telegram token not set, notifications disabled")
	}

	apiHandler := api.NewHandler(endpoints, trackingRepo, ledgerRepo, subRepo, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler, notifier and watcher are stopped via defer
	slog.Info("Shutdown complete")
}
