package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/nkovacs/skinpriced/internal/cache"
	"github.com/nkovacs/skinpriced/internal/normalize"
)

// BulkConfig holds bulk provider settings.
type BulkConfig struct {
	URL         string        // Full listing endpoint
	Token       string        // Optional bearer token
	Timeout     time.Duration // Per-request timeout (default: 30s)
	SnapshotTTL time.Duration // Snapshot max age before reload (default: 10m)
}

// DefaultBulkConfig returns sensible defaults.
func DefaultBulkConfig() BulkConfig {
	return BulkConfig{
		Timeout:     30 * time.Second,
		SnapshotTTL: 10 * time.Minute,
	}
}

// bulkItem is one entry of the provider's listing payload. min_price is the
// fallback when lowest_price is absent; both can be null for unlisted items.
type bulkItem struct {
	MarketHashName string   `json:"market_hash_name"`
	LowestPrice    *float64 `json:"lowest_price"`
	MinPrice       *float64 `json:"min_price"`
}

// Bulk answers lookups from a periodically reloaded full-market snapshot.
type Bulk struct {
	cfg    BulkConfig
	hc     *http.Client
	logger *slog.Logger
	prices *cache.PriceCache

	// snapshot is replaced wholesale under mu; readers see the old or the
	// new table in full, never a mix.
	mu       sync.RWMutex
	snapshot map[string]float64
	loadedAt time.Time

	// reloadMu single-flights reloads so a thundering herd of stale
	// resolves issues one fetch.
	reloadMu sync.Mutex
}

// BulkOption configures a Bulk source.
type BulkOption func(*Bulk)

// WithBulkHTTPClient sets a custom HTTP client.
func WithBulkHTTPClient(hc *http.Client) BulkOption {
	return func(b *Bulk) {
		b.hc = hc
	}
}

// NewBulk creates a Bulk source. prices may be nil to skip cache
// write-through.
func NewBulk(cfg BulkConfig, prices *cache.PriceCache, logger *slog.Logger, opts ...BulkOption) *Bulk {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultBulkConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.SnapshotTTL == 0 {
		cfg.SnapshotTTL = def.SnapshotTTL
	}

	b := &Bulk{
		cfg:    cfg,
		hc:     &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		prices: prices,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name identifies this source in resolution results.
func (b *Bulk) Name() string {
	return "bulk"
}

// Resolve returns the snapshot price for key, reloading first when the
// snapshot is empty or past its TTL. A failed reload is not an error here:
// resolution falls back to the previous snapshot.
func (b *Bulk) Resolve(ctx context.Context, key string) (float64, error) {
	if b.stale() {
		if err := b.Reload(ctx); err != nil {
			b.logger.Warn("bulk reload failed, serving previous snapshot", "err", err)
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot[key], nil
}

// Reload fetches the full listing and swaps the snapshot atomically. On any
// failure the previous snapshot is left untouched.
func (b *Bulk) Reload(ctx context.Context) error {
	b.reloadMu.Lock()
	defer b.reloadMu.Unlock()

	// Another caller may have reloaded while we waited.
	if !b.stale() {
		return nil
	}

	start := time.Now()

	body, err := getJSON(ctx, b.hc, b.cfg.URL, b.cfg.Token)
	if err != nil {
		return fmt.Errorf("fetch bulk listing: %w", err)
	}

	var items []bulkItem
	if err := json.Unmarshal(body, &items); err != nil {
		return fmt.Errorf("parse bulk listing: %w", err)
	}

	fresh := make(map[string]float64, len(items))
	for _, it := range items {
		price := pickPrice(it)
		if price <= 0 {
			continue
		}
		fresh[normalize.Normalize(it.MarketHashName)] = price
	}

	b.mu.Lock()
	b.snapshot = fresh
	b.loadedAt = time.Now()
	b.mu.Unlock()

	b.logger.Info("bulk snapshot reloaded",
		"entries", len(fresh),
		"raw_entries", len(items),
		"duration", time.Since(start),
	)

	if b.prices != nil {
		b.writeThrough(ctx, fresh)
	}

	return nil
}

// SnapshotAge returns the age of the current snapshot, or false if none was
// ever loaded.
func (b *Bulk) SnapshotAge() (time.Duration, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.loadedAt.IsZero() {
		return 0, false
	}
	return time.Since(b.loadedAt), true
}

// SnapshotSize returns the entry count of the current snapshot.
func (b *Bulk) SnapshotSize() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.snapshot)
}

// emptyRecheck bounds how often an empty snapshot triggers a reload, so a
// provider that genuinely lists nothing is not fetched on every lookup.
const emptyRecheck = 30 * time.Second

func (b *Bulk) stale() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.snapshot) == 0 {
		recheck := emptyRecheck
		if b.cfg.SnapshotTTL < recheck {
			recheck = b.cfg.SnapshotTTL
		}
		return b.loadedAt.IsZero() || time.Since(b.loadedAt) > recheck
	}
	return time.Since(b.loadedAt) > b.cfg.SnapshotTTL
}

// writeThrough populates the price cache from a fresh snapshot so single
// lookups between reloads stay off the network.
func (b *Bulk) writeThrough(ctx context.Context, fresh map[string]float64) {
	var failed int
	for key, price := range fresh {
		if err := b.prices.Put(ctx, key, price); err != nil {
			failed++
		}
	}
	if failed > 0 {
		b.logger.Warn("bulk cache write-through incomplete", "failed", failed, "total", len(fresh))
	}
}

func pickPrice(it bulkItem) float64 {
	if it.LowestPrice != nil && *it.LowestPrice > 0 {
		return *it.LowestPrice
	}
	if it.MinPrice != nil && *it.MinPrice > 0 {
		return *it.MinPrice
	}
	return 0
}
