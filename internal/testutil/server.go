// Shared test server setup utilities, which simplify all API tests.

package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/vrsandeep/manga-sync/internal/api"
	"github.com/vrsandeep/manga-sync/internal/config"
	"github.com/vrsandeep/manga-sync/internal/core"
)

// TestConfig returns a configuration with the offline provider registered,
// no outbound rate limit and authentication disabled.
func TestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Sync.Cron = "0 0 0 * * *"
	cfg.Sync.CacheTTL = time.Hour
	cfg.Sync.GracePeriod = time.Second
	cfg.Sync.MockProvider = true
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Auth.Disabled = true
	return cfg
}

// SetupTestApp builds a full core.App on an in-memory database. The
// websocket hub is running and is stopped when the test ends.
func SetupTestApp(t *testing.T, cfg *config.Config) *core.App {
	t.Helper()
	if cfg == nil {
		cfg = TestConfig()
	}
	db := SetupTestDB(t)

	app, err := core.NewWithDB(cfg, db, "test")
	if err != nil {
		t.Fatalf("Failed to build test app: %v", err)
	}
	go app.WsHub().Run()
	t.Cleanup(func() {
		app.JobManager().Cancel()
		app.WsHub().Stop()
	})
	return app
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t, nil)
	return api.NewServer(app), app.DB()
}

// SetupAuthTestServer is SetupTestServer with API key authentication
// enabled. It returns a ready-to-use Authorization header value.
func SetupAuthTestServer(t *testing.T) (*api.Server, string) {
	t.Helper()
	cfg := TestConfig()
	cfg.Auth.Disabled = false
	cfg.Auth.KeyPath = filepath.Join(t.TempDir(), "secret", "key.pub")
	cfg.Auth.WarnAgeDays = 90
	cfg.Auth.RotateAgeDays = 365

	app := SetupTestApp(t, cfg)
	key, err := app.Keys().Rotate()
	if err != nil {
		t.Fatalf("Failed to rotate test API key: %v", err)
	}
	return api.NewServer(app), "Bearer " + key
}
