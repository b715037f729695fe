// Package resolver orchestrates the price fallback chain.
//
// Sources are consulted in the order they are given; construction order is
// the policy. The standard chain is bulk snapshot first (already fetched,
// broad), then the cache (no network), then the rate-limited single provider
// last because it is the most constrained resource.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/nkovacs/skinpriced/internal/cache"
	"github.com/nkovacs/skinpriced/internal/model"
	"github.com/nkovacs/skinpriced/internal/normalize"
)

// Source is one price provider in the fallback chain. Resolve returns 0 for
// "no price here"; errors are treated the same way and logged.
type Source interface {
	Name() string
	Resolve(ctx context.Context, key string) (float64, error)
}

// Resolver walks an ordered source chain and returns the first positive
// price.
type Resolver struct {
	sources []Source
	logger  *slog.Logger
}

// New creates a Resolver over the given chain.
func New(logger *slog.Logger, sources ...Source) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{sources: sources, logger: logger}
}

// Resolve normalizes rawName and short-circuits at the first source that
// produces a positive price. The second return is false when every source
// came up empty; that is a valid terminal state, not an error.
func (r *Resolver) Resolve(ctx context.Context, rawName string) (model.PriceEntry, bool) {
	key := normalize.Normalize(rawName)
	if key == "" {
		return model.PriceEntry{}, false
	}

	for _, src := range r.sources {
		price, err := src.Resolve(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return model.PriceEntry{Key: key}, false
			}
			r.logger.Warn("source failed", "source", src.Name(), "key", key, "err", err)
			continue
		}
		if price > 0 {
			return model.PriceEntry{
				Key:        key,
				Price:      price,
				Source:     model.SourceKind(src.Name()),
				ObservedAt: time.Now(),
			}, true
		}
	}

	return model.PriceEntry{Key: key}, false
}

// CacheSource adapts the price cache into the source chain.
type CacheSource struct {
	prices *cache.PriceCache
}

// NewCacheSource wraps a PriceCache as a Source.
func NewCacheSource(prices *cache.PriceCache) *CacheSource {
	return &CacheSource{prices: prices}
}

// Name identifies this source in resolution results.
func (c *CacheSource) Name() string {
	return "cache"
}

// Resolve returns the cached price, or 0 on a miss.
func (c *CacheSource) Resolve(ctx context.Context, key string) (float64, error) {
	price, ok := c.prices.Get(ctx, key)
	if !ok {
		return 0, nil
	}
	return price, nil
}
