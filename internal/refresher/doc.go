// Package refresher implements the catalog refresh run.
//
// A run scans the catalog once in stable order, then partitions it across N
// workers: worker i owns the items whose index satisfies index mod N == i.
// Each worker resolves its items through the fallback chain, trying several
// name variants per item, and writes the resulting price, wear, and rarity
// back to the catalog. Failed items are counted and skipped, never fatal;
// a run always finishes and reports its totals.
package refresher
