package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nkovacs/skinpriced/internal/cache"
	"github.com/nkovacs/skinpriced/internal/config"
	"github.com/nkovacs/skinpriced/internal/database"
	"github.com/nkovacs/skinpriced/internal/ratelimit"
	"github.com/nkovacs/skinpriced/internal/refresher"
	"github.com/nkovacs/skinpriced/internal/resolver"
	"github.com/nkovacs/skinpriced/internal/server"
	"github.com/nkovacs/skinpriced/internal/source"
	"github.com/nkovacs/skinpriced/internal/store"
	"github.com/nkovacs/skinpriced/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/priced.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting priced",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"cache_backend", cfg.Cache.Backend,
		"bulk_url", cfg.Providers.Bulk.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Catalog schema
	catalog := store.NewCatalog(pool)
	if err := catalog.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure catalog schema", "error", err)
		os.Exit(1)
	}

	// Durable cache tier: postgres shares the main pool, redis is a
	// separate connection.
	var durable cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		redisStore, err := store.NewRedisPrices(ctx, cfg.Cache.Redis)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err, "addr", cfg.Cache.Redis.Addr)
			os.Exit(1)
		}
		defer redisStore.Close()
		durable = redisStore
		logger.Info("redis cache backend connected", "addr", cfg.Cache.Redis.Addr)
	default:
		pgStore := store.NewPostgresPrices(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure price cache schema", "error", err)
			os.Exit(1)
		}
		durable = pgStore
	}

	prices := cache.New(durable, cfg.Cache.TTL, logger)

	// Rate gate for the per-item provider
	gateCfg := ratelimit.DefaultConfig()
	if cfg.Limiter.Cooldown > 0 {
		gateCfg.Cooldown = cfg.Limiter.Cooldown
	}
	if cfg.Limiter.BackoffBase > 0 {
		gateCfg.BackoffBase = cfg.Limiter.BackoffBase
	}
	if cfg.Limiter.BackoffJitter > 0 {
		gateCfg.BackoffJitter = cfg.Limiter.BackoffJitter
	}
	gate := ratelimit.NewGate(gateCfg)

	// Price sources, in resolution order: bulk snapshot, cache, single
	bulkCfg := source.DefaultBulkConfig()
	bulkCfg.URL = cfg.Providers.Bulk.URL
	bulkCfg.Token = cfg.Providers.Bulk.Token
	if cfg.Providers.Bulk.Timeout > 0 {
		bulkCfg.Timeout = cfg.Providers.Bulk.Timeout
	}
	if cfg.Providers.Bulk.SnapshotTTL > 0 {
		bulkCfg.SnapshotTTL = cfg.Providers.Bulk.SnapshotTTL
	}
	bulk := source.NewBulk(bulkCfg, prices, logger)

	singleCfg := source.DefaultSingleConfig()
	singleCfg.URL = cfg.Providers.Single.URL
	if cfg.Providers.Single.AppID > 0 {
		singleCfg.AppID = cfg.Providers.Single.AppID
	}
	if cfg.Providers.Single.Currency > 0 {
		singleCfg.Currency = cfg.Providers.Single.Currency
	}
	if cfg.Providers.Single.Timeout > 0 {
		singleCfg.Timeout = cfg.Providers.Single.Timeout
	}
	if cfg.Providers.Single.MaxAttempts > 0 {
		singleCfg.MaxAttempts = cfg.Providers.Single.MaxAttempts
	}
	single := source.NewSingle(singleCfg, gate, prices, logger)

	res := resolver.New(logger, bulk, resolver.NewCacheSource(prices), single)

	// Catalog refresher
	refCfg := refresher.DefaultConfig()
	if cfg.Refresher.Workers > 0 {
		refCfg.Workers = cfg.Refresher.Workers
	}
	if cfg.Refresher.ItemDelay > 0 {
		refCfg.ItemDelay = cfg.Refresher.ItemDelay
	}
	if cfg.Refresher.VariantDelay > 0 {
		refCfg.VariantDelay = cfg.Refresher.VariantDelay
	}
	if cfg.Refresher.ProgressEvery > 0 {
		refCfg.ProgressEvery = cfg.Refresher.ProgressEvery
	}
	ref := refresher.New(refCfg, catalog, res, logger)

	// HTTP control surface
	srvCfg := server.DefaultConfig()
	if cfg.Server.Port > 0 {
		srvCfg.Port = cfg.Server.Port
	}
	srv, err := server.New(srvCfg, res, ref, pool, bulk, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	logger.Info("priced running",
		"instance_id", cfg.Instance.ID,
		"port", srvCfg.Port,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("priced stopped")
}
