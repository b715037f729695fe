package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Config holds gate settings.
type Config struct {
	Permits       int           // Max in-flight requests (default: 1)
	Cooldown      time.Duration // Permit hold after release (default: 1s)
	BackoffBase   time.Duration // Minimum sleep after a throttle signal (default: 6s)
	BackoffJitter time.Duration // Random extra sleep on top of base (default: 4s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Permits:       1,
		Cooldown:      time.Second,
		BackoffBase:   6 * time.Second,
		BackoffJitter: 4 * time.Second,
	}
}

// Gate is a global permit gate with delayed release. Safe for use from any
// number of goroutines.
type Gate struct {
	cfg     Config
	permits chan struct{}
	pacer   *rate.Limiter
}

// NewGate creates a Gate. Zero-valued config fields fall back to defaults.
func NewGate(cfg Config) *Gate {
	def := DefaultConfig()
	if cfg.Permits <= 0 {
		cfg.Permits = def.Permits
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}
	if cfg.BackoffJitter < 0 {
		cfg.BackoffJitter = def.BackoffJitter
	}

	return &Gate{
		cfg:     cfg,
		permits: make(chan struct{}, cfg.Permits),
		pacer:   rate.NewLimiter(rate.Every(cfg.Cooldown), 1),
	}
}

// Acquire blocks until a permit is available, then reserves it and returns a
// release func. Release must be called exactly once; the permit returns to
// the pool only after the cool-down elapses, keeping requests spaced out.
func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case g.permits <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Pace request starts even when the previous permit was released early.
	if err := g.pacer.Wait(ctx); err != nil {
		<-g.permits
		return nil, err
	}

	return func() {
		time.AfterFunc(g.cfg.Cooldown, func() {
			<-g.permits
		})
	}, nil
}

// Backoff sleeps the randomized throttle window (base + jitter). It returns
// early with the context error on cancellation.
func (g *Gate) Backoff(ctx context.Context) error {
	d := g.cfg.BackoffBase
	if g.cfg.BackoffJitter > 0 {
		d += rand.N(g.cfg.BackoffJitter)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Cooldown reports the configured permit hold time.
func (g *Gate) Cooldown() time.Duration {
	return g.cfg.Cooldown
}
