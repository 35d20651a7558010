package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"nfl-playoff-pickem/app"
	"nfl-playoff-pickem/config"
	"nfl-playoff-pickem/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	cfg.LogConfiguration()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logging.Fatalf("Failed to start: %v", err)
	}
	defer application.Close()

	season := cfg.App.CurrentSeason
	if cfg.App.SeedOnStartup || application.Demo {
		logging.Infof("Seeding teams, roster and %d schedule", season)
		if err := application.Seed(ctx, season); err != nil {
			// The server still serves whatever is already stored
			logging.Errorf("Seeding failed: %v", err)
		}
	}

	if cfg.Jobs.Enabled {
		scheduler := application.Scheduler()
		scheduler.Start(ctx)
		defer scheduler.Stop()
	} else {
		logging.Warn("Periodic jobs disabled; locks and scores only change through admin operations")
	}

	server := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logging.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Graceful shutdown failed: %v", err)
	}
}
