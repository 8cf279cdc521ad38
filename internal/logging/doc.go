// Package logging assembles the structured slog loggers used across the
// enrichment engine and its CLI.
//
// It owns the console and JSON handlers, level parsing, attribute helpers and
// the standardized field names (component, event_type, error_hint, impact,
// decision_type). Context-aware helpers tag log lines with the item, domain,
// provider and correlation identifiers stamped by package services, and a
// no-op logger keeps tests and optional wiring quiet.
package logging
