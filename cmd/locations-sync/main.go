// Command locations-sync copies the location registry from Postgres into the
// Elasticsearch index used for location search.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"run-planner/internal/config"
	"run-planner/internal/store"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "overall sync timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg)
	if cfg.DatabaseURL == "" || cfg.ElasticURL == "" {
		logger.Fatal().Msg("DATABASE_URL and ELASTIC_URL are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres pool")
	}
	defer pool.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{cfg.ElasticURL}})
	if err != nil {
		logger.Fatal().Err(err).Msg("elasticsearch client")
	}

	if err := sync(ctx, store.NewPostgres(pool), store.NewElastic(es, cfg.ElasticIndex)); err != nil {
		logger.Fatal().Err(err).Msg("sync")
	}
	logger.Info().Str("index", cfg.ElasticIndex).Msg("locations synced")
}

func sync(ctx context.Context, src store.LocationLister, dst *store.Elastic) error {
	locs, err := src.ListLocations(ctx)
	if err != nil {
		return err
	}
	if err := dst.EnsureIndex(ctx); err != nil {
		return err
	}
	return dst.IndexLocations(ctx, locs)
}
