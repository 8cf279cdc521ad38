// Package catalog defines the value types that flow through the enrichment
// engine: the read-only catalog item supplied by callers, the partial record
// each source contributes, and the merged, immutable enriched item.
package catalog
