// Package enrichcache holds enriched items in memory for the life of the
// process.
//
// Entries are keyed by the folded title and creator (see Key), are never
// evicted and never expire; only an explicit refresh overwrites a slot. A hit
// returns the stored *catalog.EnrichedItem itself, so callers must treat it as
// read-only.
//
// Concurrent misses for the same key share one in-flight fill through Do.
package enrichcache
