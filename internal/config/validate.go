package config

import (
	"errors"
	"fmt"
	"strings"

	"bookshelf/internal/catalog"
)

var searchableAdapters = map[string]bool{
	AdapterGoogleBooks: true,
	AdapterOpenLibrary: true,
	AdapterITunes:      true,
}

var knownAdapters = map[string]bool{
	AdapterGoogleBooks: true,
	AdapterOpenLibrary: true,
	AdapterTMDB:        true,
	AdapterITunes:      true,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGateway(); err != nil {
		return err
	}
	if err := c.validateEnrichment(); err != nil {
		return err
	}
	if err := c.validateDisambiguation(); err != nil {
		return err
	}
	if err := c.validateDomains(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateGateway() error {
	if c.Gateway.MinIntervalMillis < 0 {
		return errors.New("gateway.min_interval_ms must be zero or positive")
	}
	if c.Gateway.RequestTimeoutSeconds <= 0 {
		return errors.New("gateway.request_timeout_seconds must be positive")
	}
	if c.Gateway.BreakerFailures < 0 {
		return errors.New("gateway.breaker_failures must be zero (disabled) or positive")
	}
	if c.Gateway.BreakerFailures > 0 && c.Gateway.BreakerCooldownSeconds <= 0 {
		return errors.New("gateway.breaker_cooldown_seconds must be positive when breakers are enabled")
	}
	return nil
}

func (c *Config) validateEnrichment() error {
	if c.Enrichment.BatchSize <= 0 {
		return errors.New("enrichment.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateDisambiguation() error {
	d := c.Disambiguation
	if d.MaxResults <= 0 {
		return errors.New("disambiguation.max_results must be positive")
	}
	if d.DominanceRatio < 1 {
		return errors.New("disambiguation.dominance_ratio must be at least 1")
	}
	if d.AbsoluteTop < 0 || d.RunnerUpCeiling < 0 {
		return errors.New("disambiguation.absolute_top and runner_up_ceiling must not be negative")
	}
	return nil
}

func (c *Config) validateDomains() error {
	for name, sources := range c.Domains {
		if !catalog.Domain(name).Valid() {
			return fmt.Errorf("domains.%s: unknown domain", name)
		}
		seen := make(map[string]bool, len(sources.Adapters))
		for _, adapter := range sources.Adapters {
			if !knownAdapters[adapter] {
				return fmt.Errorf("domains.%s.adapters: unknown adapter %q", name, adapter)
			}
			if seen[adapter] {
				return fmt.Errorf("domains.%s.adapters: %q listed twice", name, adapter)
			}
			seen[adapter] = true
		}
		if sources.Search != "" && !searchableAdapters[sources.Search] {
			return fmt.Errorf("domains.%s.search: adapter %q does not support creator search", name, sources.Search)
		}
		for _, link := range sources.Links {
			if link.Name == "" {
				return fmt.Errorf("domains.%s.links: name is required", name)
			}
			if !strings.Contains(link.URLTemplate, "{query}") {
				return fmt.Errorf("domains.%s.links: %s url_template must contain {query}", name, link.Name)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}
