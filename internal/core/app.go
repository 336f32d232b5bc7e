package core

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vrsandeep/manga-sync/internal/assets"
	"github.com/vrsandeep/manga-sync/internal/auth"
	"github.com/vrsandeep/manga-sync/internal/cache"
	"github.com/vrsandeep/manga-sync/internal/config"
	"github.com/vrsandeep/manga-sync/internal/db"
	"github.com/vrsandeep/manga-sync/internal/httpclient"
	"github.com/vrsandeep/manga-sync/internal/jobs"
	"github.com/vrsandeep/manga-sync/internal/metrics"
	"github.com/vrsandeep/manga-sync/internal/store"
	"github.com/vrsandeep/manga-sync/internal/syncer"
	"github.com/vrsandeep/manga-sync/internal/tracker"
	"github.com/vrsandeep/manga-sync/internal/tracker/providers"
	"github.com/vrsandeep/manga-sync/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	config     *config.Config
	db         *sql.DB
	store      *store.Store
	httpClient *http.Client
	registry   *providers.Registry
	feeds      *cache.FeedCache
	promReg    *prometheus.Registry
	metrics    *metrics.Collector
	wsHub      *websocket.Hub
	syncer     *syncer.Service
	jobManager *jobs.JobManager
	scheduler  *jobs.Scheduler
	keys       *auth.KeyManager
	version    string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New(version string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewFromConfig(cfg, version)
}

// NewFromConfig is New with an already loaded configuration.
func NewFromConfig(cfg *config.Config, version string) (*App, error) {
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		// We can't proceed without a valid database schema.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	app, err := NewWithDB(cfg, database, version)
	if err != nil {
		database.Close()
		return nil, err
	}
	log.Println("Core application setup complete.")
	return app, nil
}

// NewWithDB wires every component on top of an already migrated database.
// The websocket hub is created but not started.
func NewWithDB(cfg *config.Config, database *sql.DB, version string) (*App, error) {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(promReg)

	client, err := httpclient.New(httpclient.Options{
		Timeout:           cfg.HTTP.Timeout,
		UserAgent:         cfg.HTTP.UserAgent,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Metrics:           collector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	var keys *auth.KeyManager
	if !cfg.Auth.Disabled {
		keys, err = auth.NewKeyManager(cfg.Auth.KeyPath, cfg.Auth.WarnAgeDays, cfg.Auth.RotateAgeDays)
		if err != nil {
			return nil, fmt.Errorf("failed to load API key: %w", err)
		}
	}

	st := store.New(database)
	registry := tracker.NewRegistry(client, cfg.Sync.MockProvider)
	feeds := cache.New(cfg.Sync.CacheTTL)
	hub := websocket.NewHub()
	svc := syncer.New(st, registry, feeds, collector, hub)

	jm := jobs.NewManager()
	jobs.RegisterSyncJob(jm, svc)

	return &App{
		config:     cfg,
		db:         database,
		store:      st,
		httpClient: client,
		registry:   registry,
		feeds:      feeds,
		promReg:    promReg,
		metrics:    collector,
		wsHub:      hub,
		syncer:     svc,
		jobManager: jm,
		scheduler:  jobs.NewScheduler(jm, jobs.SyncJobID),
		keys:       keys,
		version:    version,
	}, nil
}

func (a *App) Config() *config.Config { return a.config }
func (a *App) DB() *sql.DB { return a.db }
func (a *App) Store() *store.Store { return a.store }
func (a *App) HTTPClient() *http.Client { return a.httpClient }
func (a *App) Registry() *providers.Registry { return a.registry }
func (a *App) Cache() *cache.FeedCache { return a.feeds }
func (a *App) Gatherer() prometheus.Gatherer { return a.promReg }
func (a *App) Metrics() *metrics.Collector { return a.metrics }
func (a *App) WsHub() *websocket.Hub { return a.wsHub }
func (a *App) Syncer() *syncer.Service { return a.syncer }
func (a *App) JobManager() *jobs.JobManager { return a.jobManager }
func (a *App) Scheduler() *jobs.Scheduler { return a.scheduler }
func (a *App) Version() string { return a.version }

// Keys returns the API key manager, or nil when authentication is disabled.
func (a *App) Keys() *auth.KeyManager { return a.keys }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	a.httpClient.CloseIdleConnections()
	if a.db != nil {
		a.db.Close()
	}
}
