// Package services defines the error taxonomy and context helpers shared by
// the gateway, the source adapters and the enrichment layers.
//
// Key responsibilities:
//   - Sentinel markers plus the Wrap helper so every failure carries both a
//     classification and its cause for errors.Is.
//   - Classify, which reduces any error to the tagged Outcome each layer uses
//     to decide between absorbing a failure and aborting the batch.
//   - Context helpers that stamp item IDs, domains, providers and correlation
//     identifiers for logging.
//
// Only ErrRateLimited is expected to travel past an adapter boundary; every
// other marker describes a soft failure that ends up as an empty field.
package services
