package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/vrsandeep/manga-sync/internal/assets"
	"github.com/vrsandeep/manga-sync/internal/config"
	"github.com/vrsandeep/manga-sync/internal/core"
	"github.com/vrsandeep/manga-sync/internal/db"
	"github.com/vrsandeep/manga-sync/internal/jobs"
)

const (
	ExitGeneralError = 1
	ExitDataError    = 3
	ExitSyncError    = 4
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "manga-sync-cli",
		Usage:   "Operate the manga-sync database without the server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Database file path (default: database.path from config.yml)",
				EnvVars: []string{"MANGASYNC_CLI_DB"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Count unread chapters for every source, or for one source",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:    "source-id",
						Aliases: []string{"s"},
						Usage:   "Refresh a single source by ID (if not set, syncs all)",
					},
				},
				Action: syncSources,
			},
			{
				Name:   "domains",
				Usage:  "List the website domains that can be synchronized",
				Action: listDomains,
			},
			{
				Name:   "sources",
				Usage:  "List every tracked source",
				Action: listSources,
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneralError)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if path := c.String("db"); path != "" {
		cfg.Database.Path = path
	}
	// The CLI never serves the API, so it must not create or rotate keys.
	cfg.Auth.Disabled = true
	return cfg, nil
}

func openApp(c *cli.Context) (*core.App, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return core.NewFromConfig(cfg, version)
}

func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func syncSources(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if id := c.Int64("source-id"); id > 0 {
		result, err := app.Syncer().RefreshSource(ctx, id)
		if outErr := outputJSON(result); outErr != nil {
			return outErr
		}
		if err != nil || !result.OK() {
			return cli.Exit("", ExitSyncError)
		}
		return nil
	}

	summary := app.Syncer().SyncAll(ctx)
	jobs.LogSummary(summary)
	if err := outputJSON(summary); err != nil {
		return err
	}
	if summary.Errors > 0 {
		return cli.Exit("", ExitSyncError)
	}
	return nil
}

func listDomains(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	// Building the registry needs no database.
	app, err := core.NewWithDB(cfg, nil, version)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	return outputJSON(app.Registry().SupportedDomains())
}

func listSources(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer app.Close()

	sources, err := app.Store().ListSources(context.Background())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to list sources: %v", err), ExitDataError)
	}
	return outputJSON(sources)
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer database.Close()

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	fmt.Println("Database is up to date.")
	return nil
}
