package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeGateway()
	c.normalizeProviders()
	c.normalizeDisambiguation()
	c.normalizeDomains()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeGateway() {
	c.Gateway.UserAgent = strings.TrimSpace(c.Gateway.UserAgent)
	if c.Gateway.UserAgent == "" {
		c.Gateway.UserAgent = defaultUserAgent
	}
	if c.Gateway.MaxBodyBytes <= 0 {
		c.Gateway.MaxBodyBytes = defaultMaxBodyBytes
	}
}

func (c *Config) normalizeProviders() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = trimURL(c.TMDB.BaseURL, defaultTMDBBaseURL)
	c.TMDB.ImageBaseURL = trimURL(c.TMDB.ImageBaseURL, defaultTMDBImageBaseURL)
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)

	if c.GoogleBooks.APIKey == "" {
		if value, ok := os.LookupEnv("GOOGLE_BOOKS_API_KEY"); ok {
			c.GoogleBooks.APIKey = value
		}
	}
	c.GoogleBooks.APIKey = strings.TrimSpace(c.GoogleBooks.APIKey)
	c.GoogleBooks.BaseURL = trimURL(c.GoogleBooks.BaseURL, defaultGoogleBooksBaseURL)

	c.OpenLibrary.BaseURL = trimURL(c.OpenLibrary.BaseURL, defaultOpenLibraryBaseURL)
	c.OpenLibrary.CoversBaseURL = trimURL(c.OpenLibrary.CoversBaseURL, defaultOpenLibraryCoversURL)

	c.ITunes.BaseURL = trimURL(c.ITunes.BaseURL, defaultITunesBaseURL)
	c.ITunes.Country = strings.ToUpper(strings.TrimSpace(c.ITunes.Country))
	if c.ITunes.Country == "" {
		c.ITunes.Country = defaultITunesCountry
	}
}

func (c *Config) normalizeDisambiguation() {
	cleaned := make([]string, 0, len(c.Disambiguation.Denylist))
	for _, marker := range c.Disambiguation.Denylist {
		if marker = strings.ToLower(strings.TrimSpace(marker)); marker != "" {
			cleaned = append(cleaned, marker)
		}
	}
	c.Disambiguation.Denylist = cleaned
}

func (c *Config) normalizeDomains() {
	normalized := make(map[string]DomainSources, len(c.Domains))
	for name, sources := range c.Domains {
		key := strings.ToLower(strings.TrimSpace(name))
		adapters := make([]string, 0, len(sources.Adapters))
		for _, adapter := range sources.Adapters {
			if adapter = strings.ToLower(strings.TrimSpace(adapter)); adapter != "" {
				adapters = append(adapters, adapter)
			}
		}
		links := make([]Link, 0, len(sources.Links))
		for _, link := range sources.Links {
			link.Name = strings.TrimSpace(link.Name)
			link.URLTemplate = strings.TrimSpace(link.URLTemplate)
			if link.Name == "" && link.URLTemplate == "" {
				continue
			}
			links = append(links, link)
		}
		normalized[key] = DomainSources{
			Adapters: adapters,
			Search:   strings.ToLower(strings.TrimSpace(sources.Search)),
			Links:    links,
		}
	}
	c.Domains = normalized
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimURL(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}
