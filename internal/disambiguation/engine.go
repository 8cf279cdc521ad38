package disambiguation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bookshelf/internal/catalog"
	"bookshelf/internal/logging"
	"bookshelf/internal/metrics"
	"bookshelf/internal/services"
	"bookshelf/internal/sources"
)

const defaultMaxResults = 20

// Options configures an Engine. Zero values fall back to the defaults.
type Options struct {
	Registry   *sources.Registry
	Policy     Policy
	MaxResults int
	// Denylist replaces DefaultDenylist when non-nil.
	Denylist []string
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Engine resolves creators for titles.
type Engine struct {
	registry   *sources.Registry
	policy     Policy
	maxResults int
	denylist   []string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// New constructs an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, errors.New("disambiguation: registry required")
	}
	policy := opts.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	denylist := DefaultDenylist
	if opts.Denylist != nil {
		denylist = make([]string, 0, len(opts.Denylist))
		for _, marker := range opts.Denylist {
			if marker = strings.ToLower(strings.TrimSpace(marker)); marker != "" {
				denylist = append(denylist, marker)
			}
		}
	}
	return &Engine{
		registry:   opts.Registry,
		policy:     policy,
		maxResults: maxResults,
		denylist:   denylist,
		logger:     logging.NewComponentLogger(opts.Logger, "disambiguation"),
		metrics:    opts.Metrics,
	}, nil
}

// DisambiguateCreator searches domain for title and ranks the creators found.
// Only a rate limit (or cancellation) is returned as an error; other search
// failures yield an empty resolution.
func (e *Engine) DisambiguateCreator(ctx context.Context, domain catalog.Domain, title string) (Resolution, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Resolution{}, services.Wrap(services.ErrValidation, "disambiguation", "validate", "title is required", nil)
	}
	ctx = services.WithDomain(ctx, domain.String())
	logger := logging.WithContext(ctx, e.logger)

	searcher := e.registry.Searcher(domain)
	if searcher == nil {
		logger.Debug("no searcher configured for domain")
		return e.finish(logger, title, Resolution{Decision: DecisionNoSearcher}), nil
	}

	results, err := searcher.Search(ctx, title, e.maxResults)
	if err != nil {
		if services.Classify(err).Fatal() {
			return Resolution{}, err
		}
		logging.WarnWithContext(logger, "creator search failed", "disambiguation_search_failed",
			logging.String("title", title),
			logging.Error(err),
			logging.String(logging.FieldImpact, "creator left unresolved"),
		)
		return e.finish(logger, title, Resolution{Decision: DecisionSearchFailed}), nil
	}
	if len(results) > e.maxResults {
		results = results[:e.maxResults]
	}

	candidates := filterCandidates(title, results, e.denylist)
	logger.Debug("disambiguation candidates",
		logging.String("title", title),
		logging.Int("results", len(results)),
		logging.Int("candidates", len(candidates)))

	return e.finish(logger, title, e.policy.Decide(groupCandidates(candidates))), nil
}

func (e *Engine) finish(logger *slog.Logger, title string, res Resolution) Resolution {
	e.metrics.Decision(res.Decision)
	result := "resolved"
	switch {
	case res.NeedsClarification:
		result = "clarify"
	case len(res.Creators) == 0:
		result = "empty"
	}
	attrs := logging.DecisionAttrs("creator_disambiguation", result, res.Decision)
	attrs = append(attrs,
		logging.String("title", title),
		logging.Strings("creators", res.Creators),
		logging.Int("groups", len(res.Groups)),
	)
	logger.Info("creator disambiguation decision", logging.Args(attrs...)...)
	return res
}
