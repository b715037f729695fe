// Package store provides the persistent collaborators: the item catalog and
// the durable tier of the price cache.
//
// Both live in Postgres by default; the price cache tier can alternatively
// run on Redis (cache.backend: redis), which keeps cache churn off the main
// database. Consumers depend on the small interfaces declared where they are
// used (cache.Store, refresher.Catalog), not on these concrete types.
package store
