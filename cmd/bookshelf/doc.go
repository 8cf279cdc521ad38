// Package main hosts the bookshelf CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration, assembles the enrichment
// engine, and renders enriched items, batch results, creator resolutions and
// rating links for the terminal or as JSON. Behaviour lives in the internal
// packages; commands here only translate flags into engine calls.
package main
