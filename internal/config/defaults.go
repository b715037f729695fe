package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBulkURL         = "https://api.skinport.com/v1/items?app_id=730&currency=EUR"
	DefaultBulkTimeout     = 30 * time.Second
	DefaultSnapshotTTL     = 10 * time.Minute
	DefaultSingleURL       = "https://steamcommunity.com/market/priceoverview/"
	DefaultAppID           = 730
	DefaultCurrency        = 3 // EUR
	DefaultSingleTimeout   = 10 * time.Second
	DefaultMaxAttempts     = 3
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultCacheBackend    = "postgres"
	DefaultCacheTTL        = 24 * time.Hour
	DefaultRedisAddr       = "localhost:6379"
	DefaultCooldown        = 1 * time.Second
	DefaultBackoffBase     = 6 * time.Second
	DefaultBackoffJitter   = 4 * time.Second
	DefaultWorkers         = 1
	DefaultItemDelay       = 350 * time.Millisecond
	DefaultVariantDelay    = 200 * time.Millisecond
	DefaultProgressEvery   = 50
	DefaultServerPort      = 8080
)

func (c *Config) applyDefaults() {
	// Provider defaults
	if c.Providers.Bulk.URL == "" {
		c.Providers.Bulk.URL = DefaultBulkURL
	}
	if c.Providers.Bulk.Timeout == 0 {
		c.Providers.Bulk.Timeout = DefaultBulkTimeout
	}
	if c.Providers.Bulk.SnapshotTTL == 0 {
		c.Providers.Bulk.SnapshotTTL = DefaultSnapshotTTL
	}
	if c.Providers.Single.URL == "" {
		c.Providers.Single.URL = DefaultSingleURL
	}
	if c.Providers.Single.AppID == 0 {
		c.Providers.Single.AppID = DefaultAppID
	}
	if c.Providers.Single.Currency == 0 {
		c.Providers.Single.Currency = DefaultCurrency
	}
	if c.Providers.Single.Timeout == 0 {
		c.Providers.Single.Timeout = DefaultSingleTimeout
	}
	if c.Providers.Single.MaxAttempts == 0 {
		c.Providers.Single.MaxAttempts = DefaultMaxAttempts
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Cache defaults
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = DefaultRedisAddr
	}

	// Limiter defaults
	if c.Limiter.Cooldown == 0 {
		c.Limiter.Cooldown = DefaultCooldown
	}
	if c.Limiter.BackoffBase == 0 {
		c.Limiter.BackoffBase = DefaultBackoffBase
	}
	if c.Limiter.BackoffJitter == 0 {
		c.Limiter.BackoffJitter = DefaultBackoffJitter
	}

	// Refresher defaults
	if c.Refresher.Workers == 0 {
		c.Refresher.Workers = DefaultWorkers
	}
	if c.Refresher.ItemDelay == 0 {
		c.Refresher.ItemDelay = DefaultItemDelay
	}
	if c.Refresher.VariantDelay == 0 {
		c.Refresher.VariantDelay = DefaultVariantDelay
	}
	if c.Refresher.ProgressEvery == 0 {
		c.Refresher.ProgressEvery = DefaultProgressEvery
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
