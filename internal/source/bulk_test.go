package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nkovacs/skinpriced/internal/cache"
	"github.com/nkovacs/skinpriced/internal/model"
)

// stubStore is a minimal durable tier for tests in this package.
type stubStore struct {
	mu   sync.Mutex
	recs map[string]model.CacheRecord
}

func newStubStore() *stubStore {
	return &stubStore{recs: make(map[string]model.CacheRecord)}
}

func (s *stubStore) Get(ctx context.Context, key string) (model.CacheRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	return rec, ok, nil
}

func (s *stubStore) Put(ctx context.Context, rec model.CacheRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.Key] = rec
	return nil
}

const bulkPayload = `[
	{"market_hash_name": "? Karambit (Factory New)", "lowest_price": 512.30},
	{"market_hash_name": "AK-47 | Redline (Field-Tested)", "lowest_price": null, "min_price": 12.50},
	{"market_hash_name": "Broken | Item", "lowest_price": -1.0},
	{"market_hash_name": "Unlisted | Item"}
]`

func TestBulkResolve(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(bulkPayload))
	}))
	defer server.Close()

	b := NewBulk(BulkConfig{URL: server.URL, SnapshotTTL: time.Hour}, nil, nil)
	ctx := context.Background()

	t.Run("mis-encoded name resolves via normalized key", func(t *testing.T) {
		price, err := b.Resolve(ctx, "★ Karambit (Factory New)")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if price != 512.30 {
			t.Errorf("price = %f, want 512.30", price)
		}
	})

	t.Run("min_price fallback", func(t *testing.T) {
		price, _ := b.Resolve(ctx, "AK-47 | Redline (Field-Tested)")
		if price != 12.50 {
			t.Errorf("price = %f, want 12.50", price)
		}
	})

	t.Run("non-positive entries dropped", func(t *testing.T) {
		if price, _ := b.Resolve(ctx, "Broken | Item"); price != 0 {
			t.Errorf("price = %f, want 0", price)
		}
		if price, _ := b.Resolve(ctx, "Unlisted | Item"); price != 0 {
			t.Errorf("price = %f, want 0", price)
		}
	})

	t.Run("snapshot reused within TTL", func(t *testing.T) {
		if got := requests.Load(); got != 1 {
			t.Errorf("provider requests = %d, want 1", got)
		}
	})

	if size := b.SnapshotSize(); size != 2 {
		t.Errorf("SnapshotSize = %d, want 2", size)
	}
}

func TestBulkFailedReloadKeepsSnapshot(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(bulkPayload))
	}))
	defer server.Close()

	b := NewBulk(BulkConfig{URL: server.URL, SnapshotTTL: 20 * time.Millisecond}, nil, nil)
	ctx := context.Background()

	before, err := b.Resolve(ctx, "★ Karambit (Factory New)")
	if err != nil || before != 512.30 {
		t.Fatalf("initial Resolve = (%f, %v), want (512.30, nil)", before, err)
	}

	// Let the snapshot expire, then make the provider fail.
	fail.Store(true)
	time.Sleep(40 * time.Millisecond)

	after, err := b.Resolve(ctx, "★ Karambit (Factory New)")
	if err != nil {
		t.Fatalf("Resolve after failed reload returned error: %v", err)
	}
	if after != before {
		t.Errorf("price after failed reload = %f, want %f (snapshot untouched)", after, before)
	}
	if size := b.SnapshotSize(); size != 2 {
		t.Errorf("SnapshotSize after failed reload = %d, want 2", size)
	}
}

func TestBulkRateLimitedReloadSkipsCycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	b := NewBulk(BulkConfig{URL: server.URL, SnapshotTTL: time.Hour}, nil, nil)

	price, err := b.Resolve(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if price != 0 {
		t.Errorf("price = %f, want 0 with no snapshot", price)
	}
	if _, loaded := b.SnapshotAge(); loaded {
		t.Error("snapshot should not exist after a throttled reload")
	}
}

func TestBulkEmptySnapshotReloads(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(bulkPayload))
	}))
	defer server.Close()

	b := NewBulk(BulkConfig{URL: server.URL, SnapshotTTL: 20 * time.Millisecond}, nil, nil)
	ctx := context.Background()

	if price, _ := b.Resolve(ctx, "★ Karambit (Factory New)"); price != 0 {
		t.Fatalf("price from empty listing = %f, want 0", price)
	}
	if size := b.SnapshotSize(); size != 0 {
		t.Fatalf("SnapshotSize = %d, want 0", size)
	}

	// An empty snapshot does not wait out the full TTL before the next
	// reload attempt.
	time.Sleep(40 * time.Millisecond)

	price, err := b.Resolve(ctx, "★ Karambit (Factory New)")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if price != 512.30 {
		t.Errorf("price after repopulated listing = %f, want 512.30", price)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("provider requests = %d, want 2", got)
	}
}

func TestBulkEmptySnapshotNotHammered(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	b := NewBulk(BulkConfig{URL: server.URL, SnapshotTTL: time.Hour}, nil, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if price, _ := b.Resolve(ctx, "anything"); price != 0 {
			t.Fatalf("price = %f, want 0", price)
		}
	}

	// Back-to-back lookups against an empty listing share one fetch.
	if got := requests.Load(); got != 1 {
		t.Errorf("provider requests = %d, want 1", got)
	}
}

func TestBulkWriteThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bulkPayload))
	}))
	defer server.Close()

	prices := cache.New(newStubStore(), 24*time.Hour, nil)
	b := NewBulk(BulkConfig{URL: server.URL, SnapshotTTL: time.Hour}, prices, nil)

	ctx := context.Background()
	if err := b.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	price, ok := prices.Get(ctx, "★ Karambit (Factory New)")
	if !ok || price != 512.30 {
		t.Errorf("cache Get = (%f, %v), want (512.30, true)", price, ok)
	}
}

func TestBulkSendsBearerToken(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	b := NewBulk(BulkConfig{URL: server.URL, Token: "secret-token", SnapshotTTL: time.Hour}, nil, nil)
	if err := b.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if got := gotAuth.Load(); got != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer secret-token")
	}
}
