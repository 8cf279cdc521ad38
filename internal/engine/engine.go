// Package engine wires the gateway, adapters, cache, orchestrator,
// disambiguator and batch controller together from configuration. It is the
// surface the surrounding application (and the CLI) talks to.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"bookshelf/internal/batch"
	"bookshelf/internal/catalog"
	"bookshelf/internal/config"
	"bookshelf/internal/disambiguation"
	"bookshelf/internal/enrichcache"
	"bookshelf/internal/enrichment"
	"bookshelf/internal/gateway"
	"bookshelf/internal/logging"
	"bookshelf/internal/metrics"
	"bookshelf/internal/sources"
)

// Engine is the assembled enrichment and disambiguation engine.
type Engine struct {
	cfg           *config.Config
	logger        *slog.Logger
	registry      *prometheus.Registry
	metrics       *metrics.Metrics
	gateway       *gateway.Gateway
	sources       *sources.Registry
	cache         *enrichcache.Cache
	orchestrator  *enrichment.Orchestrator
	disambiguator *disambiguation.Engine
}

type settings struct {
	httpClient *http.Client
}

// Option customizes engine construction.
type Option func(*settings)

// WithHTTPClient overrides the HTTP client used by the gateway.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// New builds an Engine from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("engine: config required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	gw := gateway.New(gateway.Options{
		MinInterval:     cfg.Gateway.MinInterval(),
		Timeout:         cfg.Gateway.RequestTimeout(),
		UserAgent:       cfg.Gateway.UserAgent,
		MaxBodyBytes:    cfg.Gateway.MaxBodyBytes,
		BreakerFailures: cfg.Gateway.BreakerFailures,
		BreakerCooldown: cfg.Gateway.BreakerCooldown(),
		HTTPClient:      s.httpClient,
		Logger:          logger,
		Metrics:         m,
	})

	reg, err := buildRegistry(cfg, gw, logger)
	if err != nil {
		return nil, err
	}

	cache := enrichcache.New(logger, m)
	orchestrator, err := enrichment.New(enrichment.Options{
		Registry: reg,
		Cache:    cache,
		Logger:   logger,
		Metrics:  m,
	})
	if err != nil {
		return nil, fmt.Errorf("build orchestrator: %w", err)
	}

	disambiguator, err := disambiguation.New(disambiguation.Options{
		Registry: reg,
		Policy: disambiguation.Policy{
			Ratio:           cfg.Disambiguation.DominanceRatio,
			AbsoluteTop:     cfg.Disambiguation.AbsoluteTop,
			RunnerUpCeiling: cfg.Disambiguation.RunnerUpCeiling,
		},
		MaxResults: cfg.Disambiguation.MaxResults,
		Denylist:   cfg.Disambiguation.Denylist,
		Logger:     logger,
		Metrics:    m,
	})
	if err != nil {
		return nil, fmt.Errorf("build disambiguator: %w", err)
	}

	return &Engine{
		cfg:           cfg,
		logger:        logger,
		registry:      registry,
		metrics:       m,
		gateway:       gw,
		sources:       reg,
		cache:         cache,
		orchestrator:  orchestrator,
		disambiguator: disambiguator,
	}, nil
}

// Enrich returns the enriched form of item, from cache when possible.
func (e *Engine) Enrich(ctx context.Context, item catalog.Item) (*catalog.EnrichedItem, error) {
	return e.orchestrator.Enrich(ctx, item)
}

// Refresh re-fetches item and replaces its cache entry.
func (e *Engine) Refresh(ctx context.Context, item catalog.Item) (*catalog.EnrichedItem, error) {
	return e.orchestrator.Refresh(ctx, item)
}

// EnrichAll enriches items in chunks. See batch.Controller.EnrichAll for the
// partial-result contract. progress may be nil.
func (e *Engine) EnrichAll(ctx context.Context, items []catalog.Item, progress batch.Progress) ([]*catalog.EnrichedItem, error) {
	controller, err := batch.New(batch.Options{
		Enricher:  e.orchestrator,
		ChunkSize: e.cfg.Enrichment.BatchSize,
		Progress:  progress,
		Logger:    e.logger,
		Metrics:   e.metrics,
	})
	if err != nil {
		return nil, err
	}
	return controller.EnrichAll(ctx, items)
}

// DisambiguateCreator ranks the creators found for title in domain.
func (e *Engine) DisambiguateCreator(ctx context.Context, domain catalog.Domain, title string) (disambiguation.Resolution, error) {
	return e.disambiguator.DisambiguateCreator(ctx, domain, title)
}

// Links returns the link-only rating entries for item without network access.
func (e *Engine) Links(item catalog.Item) []catalog.RatingEntry {
	return e.orchestrator.Links(item)
}

// CacheSize reports how many enriched items are cached.
func (e *Engine) CacheSize() int {
	return e.cache.Count()
}

// Gatherer exposes the engine's metrics registry.
func (e *Engine) Gatherer() prometheus.Gatherer {
	return e.registry
}

// BreakerState reports the gateway breaker state for a provider id.
func (e *Engine) BreakerState(provider string) string {
	return e.gateway.BreakerState(provider)
}
