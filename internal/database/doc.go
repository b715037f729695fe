// Package database provides the PostgreSQL connection pool.
//
// One pool serves both stores:
//   - items: the catalog (names, conditions, pricing fields)
//   - price_cache: the durable tier of the price cache
package database
