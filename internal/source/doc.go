// Package source implements the external price providers.
//
// Bulk fetches a full market snapshot from a listing provider in one call
// and answers lookups from it until the snapshot TTL lapses. Single resolves
// one item at a time from a secondary provider behind the global rate gate.
// Both write successful resolutions through the price cache.
//
// Provider failures are non-fatal by design: a failed bulk reload keeps the
// previous snapshot, and a failed single lookup degrades to "unresolved".
package source
