package testsupport

import (
	"testing"

	"bookshelf/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a default config with request pacing disabled and no
// provider keys. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfgVal := config.Default()
	cfgVal.Gateway.MinIntervalMillis = 0
	cfgVal.Gateway.RequestTimeoutSeconds = 5
	cfgVal.TMDB.APIKey = ""
	cfgVal.GoogleBooks.APIKey = ""

	builder := &configBuilder{
		t:   t,
		cfg: &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithProviderBaseURL points every provider API at baseURL, typically an
// httptest server.
func WithProviderBaseURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = baseURL
		b.cfg.GoogleBooks.BaseURL = baseURL
		b.cfg.OpenLibrary.BaseURL = baseURL
		b.cfg.ITunes.BaseURL = baseURL
	}
}

// WithDomain replaces the sources wired to one domain.
func WithDomain(name string, sources config.DomainSources) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Domains[name] = sources
	}
}
