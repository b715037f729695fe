package model

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies which tier of the fallback chain produced a price.
type SourceKind string

const (
	SourceBulk   SourceKind = "bulk"
	SourceCache  SourceKind = "cache"
	SourceSingle SourceKind = "single"
)

// Item is one catalog row. The refresher only reads ID/Name/Condition and
// writes the pricing fields back; everything else belongs to the catalog
// owner.
type Item struct {
	ID        uuid.UUID // Primary key
	Name      string    // Raw display name, possibly with the ? mis-encoding
	Condition string    // Wear tier label, empty until first refresh
	Price     float64   // Last resolved price (EUR)
	WearFloat float64   // Rolled float within the condition's band
	Rarity    string    // Rarity label from the static table
	ImageURL  string    // Render URL, untouched here
	UpdatedAt time.Time // Last pricing update
}

// PriceEntry is a resolved price tagged with where it came from.
type PriceEntry struct {
	Key        string
	Price      float64
	Source     SourceKind
	ObservedAt time.Time
}

// CacheRecord is one row of the durable cache tier.
type CacheRecord struct {
	Key       string
	Price     float64
	WrittenAt time.Time
}

// Expired reports whether the record is older than ttl at the given instant.
func (r CacheRecord) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.WrittenAt) > ttl
}
