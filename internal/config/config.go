package config

import "time"

// Config is the root configuration for a priced instance.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Providers ProvidersConfig `yaml:"providers"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Limiter   LimiterConfig   `yaml:"limiter"`
	Refresher RefresherConfig `yaml:"refresher"`
	Server    ServerConfig    `yaml:"server"`
}

// InstanceConfig identifies this instance in logs.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ProvidersConfig holds both external price provider endpoints.
type ProvidersConfig struct {
	Bulk   BulkConfig   `yaml:"bulk"`
	Single SingleConfig `yaml:"single"`
}

// BulkConfig holds the bulk listing provider settings.
type BulkConfig struct {
	URL         string        `yaml:"url"`
	Token       string        `yaml:"token"` // optional bearer token
	Timeout     time.Duration `yaml:"timeout"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
}

// SingleConfig holds the per-item price provider settings.
type SingleConfig struct {
	URL         string        `yaml:"url"`
	AppID       int           `yaml:"app_id"`
	Currency    int           `yaml:"currency"` // provider currency code, 3 = EUR
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// DatabaseConfig holds the Postgres connection for the catalog and the
// durable cache tier.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CacheConfig holds price cache settings. Backend selects the durable tier:
// "postgres" reuses the main database, "redis" uses a dedicated Redis DB.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig holds the Redis durable tier connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LimiterConfig holds the single-source rate gate settings.
type LimiterConfig struct {
	Cooldown      time.Duration `yaml:"cooldown"`       // permit hold after each request
	BackoffBase   time.Duration `yaml:"backoff_base"`   // sleep after a 429
	BackoffJitter time.Duration `yaml:"backoff_jitter"` // random extra on top of base
}

// RefresherConfig holds catalog refresh settings.
type RefresherConfig struct {
	Workers       int           `yaml:"workers"`
	ItemDelay     time.Duration `yaml:"item_delay"`
	VariantDelay  time.Duration `yaml:"variant_delay"`
	ProgressEvery int           `yaml:"progress_every"`
}

// ServerConfig holds the trigger/status HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}
