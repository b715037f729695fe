package source

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nkovacs/skinpriced/internal/cache"
	"github.com/nkovacs/skinpriced/internal/ratelimit"
)

// SingleConfig holds single provider settings.
type SingleConfig struct {
	URL         string        // priceoverview endpoint
	AppID       int           // Game app id (default: 730)
	Currency    int           // Provider currency code (default: 3, EUR)
	Timeout     time.Duration // Per-request timeout (default: 10s)
	MaxAttempts int           // Total attempts including the first (default: 3)
	RetryDelay  time.Duration // Base delay before a transient retry (default: 2s)
}

// DefaultSingleConfig returns sensible defaults.
func DefaultSingleConfig() SingleConfig {
	return SingleConfig{
		AppID:       730,
		Currency:    3,
		Timeout:     10 * time.Second,
		MaxAttempts: 3,
		RetryDelay:  2 * time.Second,
	}
}

// Single resolves one item at a time from the secondary provider, behind the
// global rate gate. Successful resolutions are written to the price cache
// before being returned.
type Single struct {
	cfg    SingleConfig
	hc     *http.Client
	logger *slog.Logger
	gate   *ratelimit.Gate
	prices *cache.PriceCache
}

// SingleOption configures a Single source.
type SingleOption func(*Single)

// WithSingleHTTPClient sets a custom HTTP client.
func WithSingleHTTPClient(hc *http.Client) SingleOption {
	return func(s *Single) {
		s.hc = hc
	}
}

// NewSingle creates a Single source. prices may be nil to skip cache
// write-through.
func NewSingle(cfg SingleConfig, gate *ratelimit.Gate, prices *cache.PriceCache, logger *slog.Logger, opts ...SingleOption) *Single {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultSingleConfig()
	if cfg.AppID == 0 {
		cfg.AppID = def.AppID
	}
	if cfg.Currency == 0 {
		cfg.Currency = def.Currency
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = def.RetryDelay
	}

	s := &Single{
		cfg:    cfg,
		hc:     &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		gate:   gate,
		prices: prices,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies this source in resolution results.
func (s *Single) Name() string {
	return "single"
}

// singleResponse is the provider payload shape.
type singleResponse struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
}

// Resolve fetches the price for one key. Throttle signals back off and retry
// within the attempt budget; transient transport failures retry after a
// short randomized delay; a definitive miss or malformed payload is
// unresolved immediately. Resolve never returns a provider failure as an
// error, only context cancellation.
func (s *Single) Resolve(ctx context.Context, key string) (float64, error) {
	if key == "" {
		return 0, nil
	}

	reqURL := s.buildURL(key)

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		body, err := s.fetch(ctx, reqURL)
		if err != nil {
			var apiErr *APIError
			switch {
			case errors.As(err, &apiErr) && apiErr.IsRateLimit():
				s.logger.Warn("single provider throttled",
					"key", key,
					"attempt", attempt,
				)
				if err := s.gate.Backoff(ctx); err != nil {
					return 0, err
				}
				continue
			case errors.As(err, &apiErr):
				// Non-200 other than throttle is definitive for this
				// cycle, retrying now will not change it.
				s.logger.Warn("single provider error", "key", key, "status", apiErr.StatusCode)
				return 0, nil
			case ctx.Err() != nil:
				return 0, ctx.Err()
			default:
				// Transient transport failure.
				s.logger.Warn("single request failed", "key", key, "attempt", attempt, "err", err)
				if err := s.retrySleep(ctx); err != nil {
					return 0, err
				}
				continue
			}
		}

		var resp singleResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			s.logger.Warn("malformed single response", "key", key, "err", err)
			return 0, nil
		}
		if !resp.Success || resp.LowestPrice == "" {
			return 0, nil // no such listing
		}

		price, err := ParseLocalizedPrice(resp.LowestPrice)
		if err != nil {
			s.logger.Warn("bad price format", "key", key, "raw", resp.LowestPrice)
			return 0, nil
		}
		if price <= 0 {
			return 0, nil
		}

		if s.prices != nil {
			if err := s.prices.Put(ctx, key, price); err != nil {
				s.logger.Warn("cache write failed", "key", key, "err", err)
			}
		}
		return price, nil
	}

	s.logger.Warn("giving up on key", "key", key, "attempts", s.cfg.MaxAttempts)
	return 0, nil
}

// fetch performs one gated request.
func (s *Single) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	release, err := s.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return getJSON(ctx, s.hc, reqURL, "")
}

func (s *Single) retrySleep(ctx context.Context) error {
	d := s.cfg.RetryDelay + rand.N(s.cfg.RetryDelay)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (s *Single) buildURL(key string) string {
	q := url.Values{}
	q.Set("currency", strconv.Itoa(s.cfg.Currency))
	q.Set("appid", strconv.Itoa(s.cfg.AppID))
	q.Set("market_hash_name", key)
	return s.cfg.URL + "?" + q.Encode()
}
