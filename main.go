package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vrsandeep/manga-sync/internal/api"
	"github.com/vrsandeep/manga-sync/internal/config"
	"github.com/vrsandeep/manga-sync/internal/core"
	"github.com/vrsandeep/manga-sync/internal/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New(version)
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	if app.Keys() == nil {
		log.Println("Warning: API authentication is disabled.")
	}

	go app.WsHub().Run()

	// The stored setting wins over config.yml; the config value only seeds it.
	cronExpr, err := app.Store().GetSetting(context.Background(), store.SettingSyncCron)
	if err != nil {
		log.Printf("Could not read %s setting, using configured schedule: %v", store.SettingSyncCron, err)
		cronExpr = app.Config().Sync.Cron
	}
	if err := app.Scheduler().Schedule(cronExpr); err != nil {
		log.Printf("Warning: %v; falling back to %q", err, app.Config().Sync.Cron)
		if err := app.Scheduler().Schedule(app.Config().Sync.Cron); err != nil {
			log.Fatalf("Could not schedule sync job: %v", err)
		}
	}
	app.Scheduler().Start()
	log.Printf("Next unread sync at %s", app.Scheduler().NextRun().Format(time.RFC3339))

	current := app.Config().Sync.Cron
	config.Watch(func(cfg *config.Config) {
		if cfg.Sync.Cron == current {
			return
		}
		if err := app.Scheduler().Schedule(cfg.Sync.Cron); err != nil {
			log.Printf("Ignoring configured schedule: %v", err)
			return
		}
		current = cfg.Sync.Cron
		if err := app.Store().UpdateSetting(context.Background(), store.SettingSyncCron, cfg.Sync.Cron); err != nil {
			log.Printf("Failed to persist new schedule: %v", err)
		}
	})

	// Setup the API server
	server := api.NewServer(app)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config().Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	grace := app.Config().Sync.GracePeriod
	graceCtx, cancelGrace := context.WithTimeout(context.Background(), grace)
	defer cancelGrace()
	if err := app.Scheduler().Shutdown(graceCtx); err != nil {
		log.Printf("Sync pass did not finish within %s and was cancelled", grace)
	}
	app.WsHub().Stop()

	log.Println("Server exiting.")
}
