package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkovacs/skinpriced/internal/model"
)

// Catalog is the Postgres-backed item catalog.
type Catalog struct {
	db *pgxpool.Pool
}

// NewCatalog creates a Catalog over the given pool.
func NewCatalog(db *pgxpool.Pool) *Catalog {
	return &Catalog{db: db}
}

const catalogSchema = `
CREATE TABLE IF NOT EXISTS items (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	condition  TEXT NOT NULL DEFAULT '',
	price      DOUBLE PRECISION NOT NULL DEFAULT 0,
	wear_float DOUBLE PRECISION NOT NULL DEFAULT 0,
	rarity     TEXT NOT NULL DEFAULT '',
	image_url  TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the items table if it does not exist.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.Exec(ctx, catalogSchema); err != nil {
		return fmt.Errorf("ensure items schema: %w", err)
	}
	return nil
}

// Items returns the full catalog in a stable order. The refresher partitions
// by slice index, so the ordering must be repeatable within one process run.
func (c *Catalog) Items(ctx context.Context) ([]model.Item, error) {
	rows, err := c.db.Query(ctx, `
		SELECT id, name, condition, price, wear_float, rarity, image_url, updated_at
		FROM items
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Condition, &it.Price,
			&it.WearFloat, &it.Rarity, &it.ImageURL, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// UpdatePricing replaces the pricing fields of one item in a single
// statement. Per-item atomicity is all the refresher needs: workers own
// disjoint items, so there is no cross-worker read-modify-write.
func (c *Catalog) UpdatePricing(ctx context.Context, it model.Item) error {
	tag, err := c.db.Exec(ctx, `
		UPDATE items
		SET name = $2, condition = $3, price = $4, wear_float = $5,
		    rarity = $6, updated_at = $7
		WHERE id = $1`,
		it.ID, it.Name, it.Condition, it.Price, it.WearFloat, it.Rarity, time.Now())
	if err != nil {
		return fmt.Errorf("update item %s: %w", it.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update item %s: %w", it.ID, pgx.ErrNoRows)
	}
	return nil
}
