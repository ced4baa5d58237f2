// backend/cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gewnthar/presupuesto/backend/cache"
	"github.com/gewnthar/presupuesto/backend/config"
	"github.com/gewnthar/presupuesto/backend/database"
	"github.com/gewnthar/presupuesto/backend/scraper"
	"github.com/gewnthar/presupuesto/backend/services"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:          "presupuesto",
	Short:        "Chilean national budget data from BCN",
	Long:         "Scrape, cache and serve the Chilean national budget published by the Biblioteca del Congreso Nacional.",
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to config.yaml (default: search standard locations)")
}

// app holds the collaborators shared by every command.
type app struct {
	cfg     *config.Config
	cache   cache.Cache
	service *services.BcnService
	store   *database.Store
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	c, err := cache.New(ctx, cache.Options{
		RedisURL:   cfg.Cache.RedisURL,
		UseRedis:   cfg.Cache.UseRedis,
		MaxEntries: cfg.Cache.MaxEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}

	a := &app{cfg: cfg, cache: c}
	opts := services.BcnOptions{
		BaseURL:             cfg.BCN.BaseURL,
		FirstYear:           cfg.BCN.FirstYear,
		CacheTTL:            cfg.BCN.CacheTTL,
		AvailabilityTimeout: cfg.BCN.AvailabilityTimeout,
	}
	if cfg.Database.Enabled() {
		db, err := database.Open(cfg.Database)
		if err != nil {
			cache.Close(c)
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		a.store = database.NewStore(db)
		opts.Archive = a.store
		opts.FetchLog = a.store
	} else {
		log.Println("Database not configured, running on cache only")
	}

	fetcher := scraper.NewHTTPFetcher(cfg.BCN.RequestTimeout, cfg.BCN.UserAgent)
	a.service = services.NewBcnService(c, fetcher, opts)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	cache.Close(a.cache)
}
