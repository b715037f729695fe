package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkovacs/skinpriced/internal/model"
)

// PostgresPrices is the Postgres implementation of the durable cache tier.
type PostgresPrices struct {
	db *pgxpool.Pool
}

// NewPostgresPrices creates a PostgresPrices over the given pool.
func NewPostgresPrices(db *pgxpool.Pool) *PostgresPrices {
	return &PostgresPrices{db: db}
}

const priceCacheSchema = `
CREATE TABLE IF NOT EXISTS price_cache (
	key        TEXT PRIMARY KEY,
	price      DOUBLE PRECISION NOT NULL,
	written_at TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the price_cache table if it does not exist.
func (p *PostgresPrices) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, priceCacheSchema); err != nil {
		return fmt.Errorf("ensure price_cache schema: %w", err)
	}
	return nil
}

// Get returns the record for key, reporting absence without error.
func (p *PostgresPrices) Get(ctx context.Context, key string) (model.CacheRecord, bool, error) {
	rec := model.CacheRecord{Key: key}
	err := p.db.QueryRow(ctx,
		`SELECT price, written_at FROM price_cache WHERE key = $1`, key,
	).Scan(&rec.Price, &rec.WrittenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CacheRecord{}, false, nil
	}
	if err != nil {
		return model.CacheRecord{}, false, fmt.Errorf("select price_cache %q: %w", key, err)
	}
	return rec, true, nil
}

// Put upserts the record. Expired rows are overwritten in place here; there
// is no sweep.
func (p *PostgresPrices) Put(ctx context.Context, rec model.CacheRecord) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO price_cache (key, price, written_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET price = EXCLUDED.price, written_at = EXCLUDED.written_at`,
		rec.Key, rec.Price, rec.WrittenAt)
	if err != nil {
		return fmt.Errorf("upsert price_cache %q: %w", rec.Key, err)
	}
	return nil
}
