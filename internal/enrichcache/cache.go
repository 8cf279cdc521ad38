package enrichcache

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"bookshelf/internal/catalog"
	"bookshelf/internal/logging"
	"bookshelf/internal/metrics"
	"bookshelf/internal/textutil"
)

// Key returns the cache key for a title and optional creator.
func Key(title, creator string) string {
	return textutil.Fold(title) + "|" + textutil.Fold(creator)
}

// Cache provides thread-safe access to enriched items.
type Cache struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	entries map[string]*catalog.EnrichedItem

	group singleflight.Group
}

// New creates an empty cache.
func New(logger *slog.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		logger:  logging.NewComponentLogger(logger, "enrichcache"),
		metrics: m,
		entries: make(map[string]*catalog.EnrichedItem),
	}
}

// Lookup returns the cached item for key if found.
func (c *Cache) Lookup(key string) (*catalog.EnrichedItem, bool) {
	if strings.TrimSpace(key) == "" {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, found := c.entries[key]
	return item, found
}

// Store places item under key, replacing any previous entry.
func (c *Cache) Store(key string, item *catalog.EnrichedItem) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("cache key cannot be empty")
	}
	if item == nil {
		return errors.New("cache item cannot be nil")
	}

	c.mu.Lock()
	_, replaced := c.entries[key]
	c.entries[key] = item
	count := len(c.entries)
	c.mu.Unlock()

	c.metrics.SetCacheEntries(count)
	c.logger.Debug("cached enriched item",
		logging.String("key", key),
		logging.Bool("replaced", replaced),
		logging.Int("sources", len(item.Sources)))
	return nil
}

// Count returns the number of entries in the cache.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns every cached key in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Do runs fill for key unless a fill for the same key is already in flight,
// in which case the caller waits for and shares that result. shared reports
// whether the result came from another caller's fill. fill runs with the
// first caller's context; a waiter whose own context ends stops waiting and
// gets its context error.
func (c *Cache) Do(ctx context.Context, key string, fill func(context.Context) (*catalog.EnrichedItem, error)) (*catalog.EnrichedItem, bool, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return fill(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.metrics.CacheLookup("shared")
		}
		if res.Err != nil {
			return nil, res.Shared, res.Err
		}
		item, _ := res.Val.(*catalog.EnrichedItem)
		return item, res.Shared, nil
	}
}
