package resolver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nkovacs/skinpriced/internal/cache"
	"github.com/nkovacs/skinpriced/internal/model"
)

// fakeSource records calls and serves a fixed price table.
type fakeSource struct {
	name   string
	prices map[string]float64
	err    error
	calls  atomic.Int32
}

func (f *fakeSource) Name() string {
	return f.name
}

func (f *fakeSource) Resolve(ctx context.Context, key string) (float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return f.prices[key], nil
}

// memStore backs a PriceCache for the chain tests.
type memStore struct {
	mu   sync.Mutex
	recs map[string]model.CacheRecord
}

func (s *memStore) Get(ctx context.Context, key string) (model.CacheRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	return rec, ok, nil
}

func (s *memStore) Put(ctx context.Context, rec model.CacheRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.Key] = rec
	return nil
}

func TestResolveBulkFirst(t *testing.T) {
	bulk := &fakeSource{name: "bulk", prices: map[string]float64{"AK-47 | Redline": 12.50}}
	cacheSrc := &fakeSource{name: "cache", prices: map[string]float64{"AK-47 | Redline": 11.00}}
	single := &fakeSource{name: "single", prices: map[string]float64{"AK-47 | Redline": 13.00}}

	r := New(nil, bulk, cacheSrc, single)

	entry, ok := r.Resolve(context.Background(), "AK-47 | Redline")
	if !ok {
		t.Fatal("Resolve returned unresolved")
	}
	if entry.Price != 12.50 {
		t.Errorf("price = %f, want 12.50 from the bulk snapshot", entry.Price)
	}
	if entry.Source != model.SourceBulk {
		t.Errorf("source = %q, want %q", entry.Source, model.SourceBulk)
	}
	if cacheSrc.calls.Load() != 0 || single.calls.Load() != 0 {
		t.Error("later sources were consulted despite a bulk hit")
	}
}

func TestResolveCacheShortCircuitsSingle(t *testing.T) {
	bulk := &fakeSource{name: "bulk", prices: map[string]float64{}}
	cacheSrc := &fakeSource{name: "cache", prices: map[string]float64{"★ Karambit | Fade": 480.00}}
	single := &fakeSource{name: "single", prices: map[string]float64{"★ Karambit | Fade": 490.00}}

	r := New(nil, bulk, cacheSrc, single)

	entry, ok := r.Resolve(context.Background(), "★ Karambit | Fade")
	if !ok || entry.Price != 480.00 {
		t.Fatalf("Resolve = (%f, %v), want (480.00, true)", entry.Price, ok)
	}
	if entry.Source != model.SourceCache {
		t.Errorf("source = %q, want %q", entry.Source, model.SourceCache)
	}
	if single.calls.Load() != 0 {
		t.Error("single provider was invoked despite a cache hit")
	}
}

func TestResolveFallsThroughToSingle(t *testing.T) {
	bulk := &fakeSource{name: "bulk", prices: map[string]float64{}}
	cacheSrc := &fakeSource{name: "cache", prices: map[string]float64{}}
	single := &fakeSource{name: "single", prices: map[string]float64{"P250 | Sand Dune": 0.03}}

	r := New(nil, bulk, cacheSrc, single)

	entry, ok := r.Resolve(context.Background(), "P250 | Sand Dune")
	if !ok || entry.Price != 0.03 {
		t.Fatalf("Resolve = (%f, %v), want (0.03, true)", entry.Price, ok)
	}
	if entry.Source != model.SourceSingle {
		t.Errorf("source = %q, want %q", entry.Source, model.SourceSingle)
	}
}

func TestResolveUnresolved(t *testing.T) {
	r := New(nil,
		&fakeSource{name: "bulk", prices: map[string]float64{}},
		&fakeSource{name: "single", prices: map[string]float64{}},
	)

	entry, ok := r.Resolve(context.Background(), "Nonexistent | Item")
	if ok {
		t.Fatal("Resolve reported a price for an unknown item")
	}
	if entry.Price != 0 {
		t.Errorf("price = %f, want 0", entry.Price)
	}
	if entry.Key != "Nonexistent | Item" {
		t.Errorf("key = %q", entry.Key)
	}
}

func TestResolveSkipsFailingSource(t *testing.T) {
	broken := &fakeSource{name: "bulk", err: errors.New("provider down")}
	single := &fakeSource{name: "single", prices: map[string]float64{"AWP | Asiimov": 70.10}}

	r := New(nil, broken, single)

	entry, ok := r.Resolve(context.Background(), "AWP | Asiimov")
	if !ok || entry.Price != 70.10 {
		t.Fatalf("Resolve = (%f, %v), want (70.10, true)", entry.Price, ok)
	}
}

func TestResolveNormalizesName(t *testing.T) {
	bulk := &fakeSource{name: "bulk", prices: map[string]float64{"★ Karambit (Factory New)": 512.30}}

	r := New(nil, bulk)

	entry, ok := r.Resolve(context.Background(), "? Karambit (Factory New)")
	if !ok {
		t.Fatal("Resolve returned unresolved")
	}
	if entry.Price != 512.30 {
		t.Errorf("price = %f, want 512.30 unchanged from the snapshot", entry.Price)
	}
	if entry.Key != "★ Karambit (Factory New)" {
		t.Errorf("key = %q, want canonical ★ form", entry.Key)
	}
}

func TestResolveEmptyName(t *testing.T) {
	r := New(nil, &fakeSource{name: "bulk", prices: map[string]float64{}})
	if _, ok := r.Resolve(context.Background(), "   "); ok {
		t.Error("Resolve reported a price for a blank name")
	}
}

func TestCacheSourceAdapter(t *testing.T) {
	prices := cache.New(&memStore{recs: make(map[string]model.CacheRecord)}, 24*time.Hour, nil)
	ctx := context.Background()

	if err := prices.Put(ctx, "M4A4 | Howl (Minimal Wear)", 3100.00); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	src := NewCacheSource(prices)
	if src.Name() != "cache" {
		t.Errorf("Name = %q, want cache", src.Name())
	}

	price, err := src.Resolve(ctx, "M4A4 | Howl (Minimal Wear)")
	if err != nil || price != 3100.00 {
		t.Errorf("Resolve = (%f, %v), want (3100.00, nil)", price, err)
	}

	price, err = src.Resolve(ctx, "missing")
	if err != nil || price != 0 {
		t.Errorf("Resolve miss = (%f, %v), want (0, nil)", price, err)
	}
}
