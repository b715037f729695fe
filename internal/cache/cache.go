package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nkovacs/skinpriced/internal/model"
)

// Store is the durable cache tier: point lookup and upsert by key.
type Store interface {
	Get(ctx context.Context, key string) (model.CacheRecord, bool, error)
	Put(ctx context.Context, rec model.CacheRecord) error
}

// PriceCache is the two-tier price cache. Safe for concurrent use from all
// workers; later writes win.
type PriceCache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger

	mu  sync.RWMutex
	hot map[string]model.CacheRecord
}

// New creates a PriceCache over the given durable store.
func New(store Store, ttl time.Duration, logger *slog.Logger) *PriceCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PriceCache{
		store:  store,
		ttl:    ttl,
		logger: logger,
		hot:    make(map[string]model.CacheRecord),
	}
}

// Get returns the cached price for key, if present and within the TTL.
// A durable hit is promoted into the in-memory tier.
func (c *PriceCache) Get(ctx context.Context, key string) (float64, bool) {
	if key == "" {
		return 0, false
	}

	now := time.Now()

	c.mu.RLock()
	rec, ok := c.hot[key]
	c.mu.RUnlock()
	if ok && !rec.Expired(now, c.ttl) {
		return rec.Price, true
	}

	rec, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("durable cache lookup failed", "key", key, "err", err)
		return 0, false
	}
	if !ok || rec.Expired(now, c.ttl) {
		return 0, false
	}

	c.mu.Lock()
	c.hot[key] = rec
	c.mu.Unlock()

	c.logger.Debug("promoted cached price", "key", key, "price", rec.Price)
	return rec.Price, true
}

// Put stores a resolved price in both tiers. Non-positive prices are
// rejected: they denote "unresolved" and are never stored.
func (c *PriceCache) Put(ctx context.Context, key string, price float64) error {
	if key == "" || price <= 0 {
		return nil
	}

	rec := model.CacheRecord{Key: key, Price: price, WrittenAt: time.Now()}

	c.mu.Lock()
	c.hot[key] = rec
	c.mu.Unlock()

	if err := c.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("durable cache put %q: %w", key, err)
	}
	return nil
}

// Len returns the in-memory tier size, for status reporting.
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hot)
}
