package sources

import (
	"context"
	"net/url"
	"strings"

	"bookshelf/internal/catalog"
	"bookshelf/internal/gateway"
)

// Caller is the slice of the gateway that adapters need.
type Caller interface {
	Call(ctx context.Context, req gateway.Request) (*gateway.Response, error)
}

// Adapter fetches one provider's view of a catalog item.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, title, creator string) (catalog.SourceRecord, error)
}

// SearchResult is one title match used for creator disambiguation.
type SearchResult struct {
	Title      string
	Creator    string
	Popularity int64
}

// Searcher returns title matches in the provider's relevance order.
type Searcher interface {
	Search(ctx context.Context, title string, limit int) ([]SearchResult, error)
}

// QueryPlaceholder is substituted by the encoded "title creator" query.
const QueryPlaceholder = "{query}"

// LinkProvider is a rating site without a usable API. It contributes a
// search link and never a rating.
type LinkProvider struct {
	Name        string
	URLTemplate string
}

// BuildURL fills the template with the percent-encoded "title creator" query.
// The creator is optional.
func (p LinkProvider) BuildURL(title, creator string) string {
	query := strings.TrimSpace(title)
	if creator = strings.TrimSpace(creator); creator != "" {
		query += " " + creator
	}
	return strings.ReplaceAll(p.URLTemplate, QueryPlaceholder, url.QueryEscape(query))
}

// Domain groups everything wired to one catalog domain.
type Domain struct {
	Adapters []Adapter
	Searcher Searcher
	Links    []LinkProvider
}

// Registry maps catalog domains to their providers. Lookups for unconfigured
// domains return empty values.
type Registry struct {
	domains map[catalog.Domain]Domain
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{domains: make(map[catalog.Domain]Domain)}
}

// Register replaces the providers for domain. Adapters must be listed in
// merge priority order.
func (r *Registry) Register(domain catalog.Domain, d Domain) {
	r.domains[domain] = Domain{
		Adapters: append([]Adapter(nil), d.Adapters...),
		Searcher: d.Searcher,
		Links:    append([]LinkProvider(nil), d.Links...),
	}
}

// Adapters returns the domain's adapters in priority order.
func (r *Registry) Adapters(domain catalog.Domain) []Adapter {
	if r == nil {
		return nil
	}
	return r.domains[domain].Adapters
}

// Searcher returns the domain's primary searcher, or nil.
func (r *Registry) Searcher(domain catalog.Domain) Searcher {
	if r == nil {
		return nil
	}
	return r.domains[domain].Searcher
}

// Links returns the domain's link-only providers.
func (r *Registry) Links(domain catalog.Domain) []LinkProvider {
	if r == nil {
		return nil
	}
	return r.domains[domain].Links
}
