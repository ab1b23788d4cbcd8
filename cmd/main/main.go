package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"run-planner/internal/config"
	"run-planner/internal/metrics"
	"run-planner/internal/planner/address"
	"run-planner/internal/planner/handler"
	"run-planner/internal/planner/importer"
	"run-planner/internal/store"
	serverhttp "run-planner/server/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg)
	metrics.Register()

	ctx := context.Background()

	mem := store.NewMemory()
	var (
		book  address.AddressBook      = mem
		locs  address.LocationSearcher = mem
		stops handler.StopRepo         = mem
	)

	if cfg.DatabaseURL != "" {
		n, err := store.Migrate(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
		logger.Info().Int("applied", n).Msg("migrations done")

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres pool")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("postgres ping")
		}
		pg := store.NewPostgres(pool)
		book, locs, stops = pg, pg, pg
	} else if cfg.SeedFile != "" {
		seed, err := store.LoadSeedFile(cfg.SeedFile, mem)
		if err != nil {
			logger.Fatal().Err(err).Msg("seed file")
		}
		logger.Warn().
			Str("seed", cfg.SeedFile).
			Int("customer_addresses", len(seed.CustomerAddresses)).
			Int("locations", len(seed.Locations)).
			Msg("DATABASE_URL not set, using in-memory store")
	} else {
		logger.Warn().Msg("DATABASE_URL and SEED_FILE not set, in-memory store is empty: every address will come back unresolved")
	}

	if cfg.ElasticURL != "" {
		es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{cfg.ElasticURL}})
		if err != nil {
			logger.Fatal().Err(err).Msg("elasticsearch client")
		}
		locs = store.NewElastic(es, cfg.ElasticIndex)
		logger.Info().Str("index", cfg.ElasticIndex).Msg("location search via elasticsearch")
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis url")
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, cache will fall through")
		}
		book = store.NewCachedBook(book, rdb, cfg.CacheTTL, logger)
	}

	dir := store.NewThrottled(store.Combine(book, locs), cfg.LookupRPS, cfg.LookupBurst)
	resolver := address.NewResolver(dir, logger)
	h := handler.New(handler.Deps{
		Resolver:  resolver,
		Importer:  importer.New(resolver, cfg.ImportThreshold, cfg.ImportWorkers, logger),
		Book:      dir,
		Stops:     stops,
		Threshold: cfg.ResolveThreshold,
		MaxUpload: int64(cfg.MaxUploadMB) << 20,
		Location:  cfg.Location(),
		Logger:    logger,
	})

	r := serverhttp.NewRouter(cfg, logger, h)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("bye")
}
