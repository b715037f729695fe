// Package cache implements the two-tier price cache.
//
// Lookups hit an in-process map first and fall back to a durable key-value
// store; durable hits inside the TTL are promoted into the map. Writes go
// through both tiers synchronously. Expired records are ignored, not
// deleted; the next put overwrites them in place.
package cache
