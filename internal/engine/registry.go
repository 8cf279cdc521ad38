package engine

import (
	"fmt"
	"log/slog"

	"bookshelf/internal/catalog"
	"bookshelf/internal/config"
	"bookshelf/internal/logging"
	"bookshelf/internal/sources"
	"bookshelf/internal/sources/googlebooks"
	"bookshelf/internal/sources/itunes"
	"bookshelf/internal/sources/openlibrary"
	"bookshelf/internal/sources/tmdb"
)

// providerSet lazily builds one client per provider so domains share them.
type providerSet struct {
	cfg    *config.Config
	caller sources.Caller
	logger *slog.Logger

	googleBooks *googlebooks.Client
	openLibrary *openlibrary.Client
	itunes      *itunes.Client
	tmdb        *tmdb.Client
	tmdbMissing bool
}

func buildRegistry(cfg *config.Config, caller sources.Caller, logger *slog.Logger) (*sources.Registry, error) {
	set := &providerSet{cfg: cfg, caller: caller, logger: logging.NewComponentLogger(logger, "engine")}
	reg := sources.NewRegistry()
	for _, domain := range catalog.Domains() {
		def := cfg.Domain(domain.String())
		var wired sources.Domain

		for _, id := range def.Adapters {
			adapter, err := set.adapter(id, domain)
			if err != nil {
				return nil, err
			}
			if adapter != nil {
				wired.Adapters = append(wired.Adapters, adapter)
			}
		}
		if def.Search != "" {
			searcher, err := set.searcher(def.Search)
			if err != nil {
				return nil, err
			}
			wired.Searcher = searcher
		}
		for _, link := range def.Links {
			wired.Links = append(wired.Links, sources.LinkProvider{Name: link.Name, URLTemplate: link.URLTemplate})
		}
		reg.Register(domain, wired)
	}
	return reg, nil
}

func (p *providerSet) adapter(id string, domain catalog.Domain) (sources.Adapter, error) {
	switch id {
	case config.AdapterGoogleBooks:
		return p.googleBooksClient()
	case config.AdapterOpenLibrary:
		return p.openLibraryClient()
	case config.AdapterITunes:
		return p.itunesClient()
	case config.AdapterTMDB:
		client, err := p.tmdbClient()
		if err != nil || client == nil {
			return nil, err
		}
		if domain == catalog.DomainTV {
			return tmdb.NewTVAdapter(client, p.cfg.TMDB.ImageBaseURL), nil
		}
		return tmdb.NewMovieAdapter(client, p.cfg.TMDB.ImageBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown adapter %q", id)
	}
}

func (p *providerSet) searcher(id string) (sources.Searcher, error) {
	switch id {
	case config.AdapterGoogleBooks:
		return p.googleBooksClient()
	case config.AdapterOpenLibrary:
		return p.openLibraryClient()
	case config.AdapterITunes:
		return p.itunesClient()
	default:
		return nil, fmt.Errorf("adapter %q cannot search", id)
	}
}

func (p *providerSet) googleBooksClient() (*googlebooks.Client, error) {
	if p.googleBooks == nil {
		client, err := googlebooks.New(p.caller, p.cfg.GoogleBooks.BaseURL, p.cfg.GoogleBooks.APIKey)
		if err != nil {
			return nil, err
		}
		p.googleBooks = client
	}
	return p.googleBooks, nil
}

func (p *providerSet) openLibraryClient() (*openlibrary.Client, error) {
	if p.openLibrary == nil {
		client, err := openlibrary.New(p.caller, p.cfg.OpenLibrary.BaseURL, p.cfg.OpenLibrary.CoversBaseURL)
		if err != nil {
			return nil, err
		}
		p.openLibrary = client
	}
	return p.openLibrary, nil
}

func (p *providerSet) itunesClient() (*itunes.Client, error) {
	if p.itunes == nil {
		client, err := itunes.New(p.caller, p.cfg.ITunes.BaseURL, p.cfg.ITunes.Country)
		if err != nil {
			return nil, err
		}
		p.itunes = client
	}
	return p.itunes, nil
}

// tmdbClient returns nil without error when no API key is configured; the
// affected domains then fall back to link-only ratings.
func (p *providerSet) tmdbClient() (*tmdb.Client, error) {
	if p.tmdb != nil || p.tmdbMissing {
		return p.tmdb, nil
	}
	if p.cfg.TMDB.APIKey == "" {
		p.tmdbMissing = true
		logging.WarnWithContext(p.logger, "tmdb api key not configured; movie and tv enrichment limited to links", "tmdb_disabled",
			logging.String(logging.FieldErrorHint, "set tmdb.api_key or TMDB_API_KEY"),
			logging.String(logging.FieldImpact, "movies and tv shows get no description, cover or TMDB rating"),
		)
		return nil, nil
	}
	client, err := tmdb.New(p.caller, p.cfg.TMDB.APIKey, p.cfg.TMDB.BaseURL, p.cfg.TMDB.Language)
	if err != nil {
		return nil, err
	}
	p.tmdb = client
	return p.tmdb, nil
}
