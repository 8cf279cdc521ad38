// Package config loads and validates the enrichment engine configuration.
//
// Configuration lives in a TOML file (default ~/.config/bookshelf/config.toml,
// falling back to ./bookshelf.toml). Load starts from Default(), decodes the
// file on top, applies environment fallbacks for API keys, expands paths and
// validates the result. A [domains.<name>] table replaces the built-in
// definition for that domain as a whole; domains absent from the file keep
// their defaults.
//
// Use CreateSample (or `bookshelf config init`) to write a commented starting
// point that mirrors the defaults.
package config
