package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bookshelf/internal/catalog"
	"bookshelf/internal/enrichcache"
	"bookshelf/internal/logging"
	"bookshelf/internal/metrics"
	"bookshelf/internal/services"
	"bookshelf/internal/sources"
)

// Options configures an Orchestrator.
type Options struct {
	Registry *sources.Registry
	Cache    *enrichcache.Cache
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Orchestrator coordinates cache, adapters and merge for single items.
type Orchestrator struct {
	registry *sources.Registry
	cache    *enrichcache.Cache
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New constructs an orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Registry == nil {
		return nil, errors.New("enrichment: registry required")
	}
	if opts.Cache == nil {
		return nil, errors.New("enrichment: cache required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		registry: opts.Registry,
		cache:    opts.Cache,
		logger:   logging.NewComponentLogger(opts.Logger, "enrichment"),
		metrics:  opts.Metrics,
		now:      now,
	}, nil
}

// Enrich returns the enriched form of item, from cache when possible.
func (o *Orchestrator) Enrich(ctx context.Context, item catalog.Item) (*catalog.EnrichedItem, error) {
	if err := validate(item); err != nil {
		return nil, err
	}
	ctx = annotate(ctx, item)
	key := enrichcache.Key(item.Title, item.Creator)
	if cached, ok := o.cache.Lookup(key); ok {
		o.metrics.CacheLookup("hit")
		logging.WithContext(ctx, o.logger).Debug("enrichment cache hit", logging.String("key", key))
		return cached, nil
	}
	o.metrics.CacheLookup("miss")

	enriched, _, err := o.cache.Do(ctx, key, func(ctx context.Context) (*catalog.EnrichedItem, error) {
		// Another fill may have completed between the lookup above and joining the flight.
		if cached, ok := o.cache.Lookup(key); ok {
			return cached, nil
		}
		return o.build(ctx, item, key)
	})
	return enriched, err
}

// Refresh re-fetches item regardless of the cache and replaces the cached entry.
func (o *Orchestrator) Refresh(ctx context.Context, item catalog.Item) (*catalog.EnrichedItem, error) {
	if err := validate(item); err != nil {
		return nil, err
	}
	ctx = annotate(ctx, item)
	key := enrichcache.Key(item.Title, item.Creator)
	enriched, _, err := o.cache.Do(ctx, key, func(ctx context.Context) (*catalog.EnrichedItem, error) {
		return o.build(ctx, item, key)
	})
	return enriched, err
}

// Links returns the link-only rating entries for item without any network
// access.
func (o *Orchestrator) Links(item catalog.Item) []catalog.RatingEntry {
	return appendLinks(nil, make(map[string]bool), o.registry.Links(item.Domain), item.Title, item.Creator)
}

func (o *Orchestrator) build(ctx context.Context, item catalog.Item, key string) (*catalog.EnrichedItem, error) {
	logger := logging.WithContext(ctx, o.logger)
	started := o.now()

	results, err := o.fetchAll(ctx, item)
	if err != nil {
		return nil, err
	}
	enriched := merge(item, results, o.registry.Links(item.Domain), o.now())
	if err := o.cache.Store(key, enriched); err != nil {
		return nil, err
	}

	logger.Info("item enriched",
		logging.String(logging.FieldEventType, "item_enriched"),
		logging.String("title", item.Title),
		logging.Strings("sources", enriched.Sources),
		logging.Int("ratings", len(enriched.Ratings)),
		logging.Duration("elapsed", o.now().Sub(started)))
	return enriched, nil
}

// fetchAll invokes every adapter concurrently. The returned slice is in
// priority order regardless of completion order.
func (o *Orchestrator) fetchAll(ctx context.Context, item catalog.Item) ([]adapterResult, error) {
	adapters := o.registry.Adapters(item.Domain)
	if len(adapters) == 0 {
		return nil, nil
	}
	results := make([]adapterResult, len(adapters))
	g, gctx := errgroup.WithContext(ctx)
	for idx, adapter := range adapters {
		name := adapter.Name()
		results[idx].name = name
		g.Go(func() error {
			record, err := adapter.Fetch(gctx, item.Title, item.Creator)
			outcome := services.Classify(err)
			o.metrics.AdapterOutcome(name, outcome.String())

			switch outcome {
			case services.OutcomeOK:
				results[idx].record = record
				return nil
			case services.OutcomeSoft:
				logging.WarnWithContext(logging.WithContext(gctx, o.logger), "adapter failed; continuing without it", "adapter_soft_failure",
					logging.String(logging.FieldProvider, name),
					logging.String("error_kind", services.Kind(err)),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "provider may not know this title or returned an unexpected payload"),
				)
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		if services.Classify(err) == services.OutcomeRateLimited {
			return nil, services.Wrap(services.ErrRateLimited, "enrichment", "fetch", item.Title, err)
		}
		return nil, err
	}
	return results, nil
}

func validate(item catalog.Item) error {
	if strings.TrimSpace(item.Title) == "" {
		return services.Wrap(services.ErrValidation, "enrichment", "validate", "title is required", nil)
	}
	if !item.Domain.Valid() {
		return services.Wrap(services.ErrValidation, "enrichment", "validate", "unknown domain "+string(item.Domain), nil)
	}
	return nil
}

func annotate(ctx context.Context, item catalog.Item) context.Context {
	ctx = services.WithItemID(ctx, item.ID)
	return services.WithDomain(ctx, item.Domain.String())
}
