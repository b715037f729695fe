package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Providers.Bulk.URL == "" {
		return errors.New("providers.bulk.url is required")
	}
	if c.Providers.Single.URL == "" {
		return errors.New("providers.single.url is required")
	}
	if c.Providers.Single.MaxAttempts < 1 {
		return errors.New("providers.single.max_attempts must be >= 1")
	}

	if err := c.Database.Postgres.validate("database.postgres"); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case "postgres":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return errors.New("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be postgres or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive")
	}

	if c.Limiter.Cooldown <= 0 {
		return errors.New("limiter.cooldown must be positive")
	}
	if c.Limiter.BackoffBase <= 0 {
		return errors.New("limiter.backoff_base must be positive")
	}

	if c.Refresher.Workers < 1 {
		return errors.New("refresher.workers must be >= 1")
	}
	if c.Refresher.ItemDelay < 0 {
		return errors.New("refresher.item_delay cannot be negative")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
