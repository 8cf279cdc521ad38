// Package sources defines the contract between the enrichment engine and
// external metadata providers, plus the registry that wires providers to
// catalog domains.
//
// Adapters are black boxes: they may return any error, and only one matching
// services.ErrRateLimited (or a context error) is treated as "stop". Every
// other failure is absorbed by the orchestrator as an empty record. Concrete
// adapters live in subpackages (googlebooks, openlibrary, tmdb, itunes) and
// reach the network exclusively through the shared gateway.
package sources
