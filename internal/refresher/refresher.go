package refresher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nkovacs/skinpriced/internal/model"
	"github.com/nkovacs/skinpriced/internal/normalize"
	"github.com/nkovacs/skinpriced/internal/rarity"
)

// ErrRunActive is returned when a refresh is requested while one is running.
var ErrRunActive = errors.New("refresh run already active")

// Catalog provides the item records being refreshed.
type Catalog interface {
	Items(ctx context.Context) ([]model.Item, error)
	UpdatePricing(ctx context.Context, it model.Item) error
}

// PriceResolver resolves a raw name into a price.
type PriceResolver interface {
	Resolve(ctx context.Context, rawName string) (model.PriceEntry, bool)
}

// Config holds refresher configuration.
type Config struct {
	Workers       int           // Default worker count (default: 1)
	ItemDelay     time.Duration // Pause between items per worker (default: 350ms)
	VariantDelay  time.Duration // Pause between name variants (default: 200ms)
	ProgressEvery int           // Items per progress log line (default: 50)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:       1,
		ItemDelay:     350 * time.Millisecond,
		VariantDelay:  200 * time.Millisecond,
		ProgressEvery: 50,
	}
}

// Status is a snapshot of the current (or last) run.
type Status struct {
	RunID     string    `json:"run_id"`
	Running   bool      `json:"running"`
	Workers   int       `json:"workers"`
	Total     int64     `json:"total"`
	Updated   int64     `json:"updated"`
	Skipped   int64     `json:"skipped"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Processed returns how many items have been handled so far.
func (s Status) Processed() int64 {
	return s.Updated + s.Skipped
}

// Refresher runs partitioned catalog refreshes. Workers share no mutable
// state beyond the externally synchronized resolver chain and catalog store.
type Refresher struct {
	cfg      Config
	catalog  Catalog
	resolver PriceResolver
	logger   *slog.Logger

	mu        sync.Mutex
	running   bool
	runID     uuid.UUID
	workers   int
	startedAt time.Time

	total   atomic.Int64
	updated atomic.Int64
	skipped atomic.Int64
}

// New creates a Refresher.
func New(cfg Config, catalog Catalog, resolver PriceResolver, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.ItemDelay < 0 {
		cfg.ItemDelay = def.ItemDelay
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = def.ProgressEvery
	}

	return &Refresher{
		cfg:      cfg,
		catalog:  catalog,
		resolver: resolver,
		logger:   logger,
	}
}

// Start launches a run in the background. It returns ErrRunActive if a run
// is in flight. workers <= 0 uses the configured default.
func (r *Refresher) Start(ctx context.Context, workers int) (Status, error) {
	if err := r.begin(workers); err != nil {
		return r.Status(), err
	}

	go func() {
		defer r.finish()
		r.run(ctx)
	}()

	return r.Status(), nil
}

// Run executes a refresh synchronously. It returns ErrRunActive if a run is
// in flight; per-item failures are counted, not returned.
func (r *Refresher) Run(ctx context.Context, workers int) error {
	if err := r.begin(workers); err != nil {
		return err
	}
	defer r.finish()

	return r.run(ctx)
}

// Status returns a snapshot of the current or most recent run.
func (r *Refresher) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{
		Running:   r.running,
		Workers:   r.workers,
		Total:     r.total.Load(),
		Updated:   r.updated.Load(),
		Skipped:   r.skipped.Load(),
		StartedAt: r.startedAt,
	}
	if r.runID != uuid.Nil {
		s.RunID = r.runID.String()
	}
	return s
}

func (r *Refresher) begin(workers int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrRunActive
	}
	if workers <= 0 {
		workers = r.cfg.Workers
	}

	r.running = true
	r.runID = uuid.New()
	r.workers = workers
	r.startedAt = time.Now()
	r.total.Store(0)
	r.updated.Store(0)
	r.skipped.Store(0)
	return nil
}

func (r *Refresher) finish() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *Refresher) run(ctx context.Context) error {
	r.mu.Lock()
	runID := r.runID
	workers := r.workers
	r.mu.Unlock()

	logger := r.logger.With("run_id", runID.String())

	items, err := r.catalog.Items(ctx)
	if err != nil {
		logger.Error("catalog scan failed", "err", err)
		return err
	}
	r.total.Store(int64(len(items)))

	logger.Info("refresh run started",
		"total", len(items),
		"workers", workers,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			r.worker(ctx, logger, items, workers, w)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	updated := r.updated.Load()
	skipped := r.skipped.Load()
	rate := 0.0
	if updated+skipped > 0 {
		rate = 100 * float64(updated) / float64(updated+skipped)
	}
	logger.Info("refresh run finished",
		"updated", updated,
		"skipped", skipped,
		"total", len(items),
		"success_rate", rate,
		"duration", time.Since(start),
	)

	return nil
}

// worker processes the partition of items owned by worker w. Cancellation is
// honored between items; an item in progress always completes or fails
// whole.
func (r *Refresher) worker(ctx context.Context, logger *slog.Logger, items []model.Item, workers, w int) {
	wlog := logger.With("worker", w)
	processed := 0

	for _, i := range Indices(len(items), workers, w) {
		if ctx.Err() != nil {
			wlog.Info("worker interrupted", "processed", processed)
			return
		}

		if r.processItem(ctx, wlog, items[i]) {
			r.updated.Add(1)
		} else {
			r.skipped.Add(1)
		}
		processed++

		if processed%r.cfg.ProgressEvery == 0 {
			done := r.updated.Load() + r.skipped.Load()
			wlog.Info("refresh progress",
				"done", done,
				"total", r.total.Load(),
				"pct", 100*float64(done)/float64(r.total.Load()),
			)
		}

		if !sleepCtx(ctx, r.cfg.ItemDelay) {
			return
		}
	}
}

// processItem resolves one item and persists the result. Returns true when
// the catalog record was updated.
func (r *Refresher) processItem(ctx context.Context, logger *slog.Logger, it model.Item) bool {
	name := normalize.Normalize(it.Name)
	if name == "" {
		return false
	}

	tier := rarity.RandomTier()
	wearFloat := tier.RollFloat()
	rar := rarity.Lookup(name)

	var price float64
	variants := normalize.Variants(name, tier.Name)
	for i, variant := range variants {
		entry, ok := r.resolver.Resolve(ctx, variant)
		if ok {
			price = entry.Price
			break
		}
		if ctx.Err() != nil {
			return false
		}
		if i < len(variants)-1 && !sleepCtx(ctx, r.cfg.VariantDelay) {
			return false
		}
	}

	if price <= 0 {
		logger.Debug("item unresolved", "name", name, "condition", tier.Name)
		return false
	}

	it.Name = name // persist the ?→★ repair
	it.Condition = tier.Name
	it.WearFloat = wearFloat
	it.Rarity = rar
	it.Price = price

	if err := r.catalog.UpdatePricing(ctx, it); err != nil {
		logger.Warn("catalog update failed", "name", name, "err", err)
		return false
	}

	logger.Debug("item updated",
		"name", name,
		"condition", tier.Name,
		"price", price,
		"rarity", rar,
	)
	return true
}

// Indices returns the item indexes owned by worker w out of the given
// worker count: every index with index mod workers == w. The scan order is
// stable for the run, so the partition is disjoint and complete.
func Indices(total, workers, w int) []int {
	if workers < 1 || w < 0 || w >= workers {
		return nil
	}
	var idx []int
	for i := w; i < total; i += workers {
		idx = append(idx, i)
	}
	return idx
}

// sleepCtx sleeps d unless the context ends first. Returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
