// Package batch enriches ordered lists of catalog items in fixed-size chunks.
//
// Chunks run strictly one after another; the items inside a chunk are
// enriched concurrently. The first fatal item error (rate limiting,
// validation, cancellation) cancels the rest of its chunk and stops the
// batch. EnrichAll then returns the contiguous in-order prefix of completed
// items, so len(results) is the offset to resume from.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bookshelf/internal/catalog"
	"bookshelf/internal/logging"
	"bookshelf/internal/metrics"
	"bookshelf/internal/services"
)

// DefaultChunkSize is the number of items enriched concurrently.
const DefaultChunkSize = 3

// Enricher enriches a single item.
type Enricher interface {
	Enrich(ctx context.Context, item catalog.Item) (*catalog.EnrichedItem, error)
}

// Progress is called after every completed chunk with the number of items
// finished so far and the batch size.
type Progress func(done, total int)

// Options configures a Controller.
type Options struct {
	Enricher  Enricher
	ChunkSize int
	Progress  Progress
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Controller drives batch enrichment.
type Controller struct {
	enricher  Enricher
	chunkSize int
	progress  Progress
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New constructs a Controller.
func New(opts Options) (*Controller, error) {
	if opts.Enricher == nil {
		return nil, errors.New("batch: enricher required")
	}
	size := opts.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Controller{
		enricher:  opts.Enricher,
		chunkSize: size,
		progress:  opts.Progress,
		logger:    logging.NewComponentLogger(opts.Logger, "batch"),
		metrics:   opts.Metrics,
	}, nil
}

// EnrichAll enriches items in order. On error the returned slice holds the
// items completed before the failure, in input order.
func (c *Controller) EnrichAll(ctx context.Context, items []catalog.Item) ([]*catalog.EnrichedItem, error) {
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()

	out := make([]*catalog.EnrichedItem, 0, len(items))
	chunks := 0
	for start := 0; start < len(items); start += c.chunkSize {
		end := min(start+c.chunkSize, len(items))
		chunk := items[start:end]
		chunks++

		results, err := c.runChunk(ctx, start, chunk)
		for _, res := range results {
			if res == nil {
				break
			}
			out = append(out, res)
		}
		if err != nil {
			c.metrics.Chunk("aborted", countDone(results))
			logging.WarnWithContext(logger, "batch stopped", "batch_aborted",
				logging.Error(err),
				logging.String("error_kind", services.Kind(err)),
				logging.Int("completed", len(out)),
				logging.Int("total", len(items)),
				logging.Int("chunk", chunks),
				logging.String(logging.FieldErrorHint, fmt.Sprintf("resume from offset %d once the cause is resolved", len(out))),
				logging.String(logging.FieldImpact, "remaining items were not enriched"),
			)
			return out, err
		}
		c.metrics.Chunk("completed", len(results))
		if c.progress != nil {
			c.progress(len(out), len(items))
		}
	}

	logger.Info("batch complete",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("items", len(out)),
		logging.Int("chunks", chunks),
		logging.Duration("elapsed", time.Since(started)))
	return out, nil
}

func (c *Controller) runChunk(ctx context.Context, offset int, chunk []catalog.Item) ([]*catalog.EnrichedItem, error) {
	results := make([]*catalog.EnrichedItem, len(chunk))
	g, gctx := errgroup.WithContext(ctx)
	for idx, item := range chunk {
		g.Go(func() error {
			enriched, err := c.enricher.Enrich(gctx, item)
			if err != nil {
				return fmt.Errorf("item %d (%q): %w", offset+idx, item.Title, err)
			}
			results[idx] = enriched
			return nil
		})
	}
	return results, g.Wait()
}

func countDone(results []*catalog.EnrichedItem) int {
	n := 0
	for _, res := range results {
		if res != nil {
			n++
		}
	}
	return n
}
