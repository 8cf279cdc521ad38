// Package enrichment turns a bare catalog item into an EnrichedItem.
//
// Enrich consults the result cache first; on a miss it fans out to every
// adapter registered for the item's domain, merges their records in the
// domain's fixed priority order (never arrival order) and appends link-only
// rating entries. A rate-limited adapter aborts the whole enrichment and
// cancels its siblings; any other adapter failure only costs that adapter's
// fields.
package enrichment
