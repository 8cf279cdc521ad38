package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Adapter identifiers accepted in [domains.*] adapters and search keys.
const (
	AdapterGoogleBooks = "google_books"
	AdapterOpenLibrary = "open_library"
	AdapterTMDB        = "tmdb"
	AdapterITunes      = "itunes"
)

// Gateway controls pacing and failure handling for every outbound call.
type Gateway struct {
	MinIntervalMillis      int    `toml:"min_interval_ms"`
	RequestTimeoutSeconds  int    `toml:"request_timeout_seconds"`
	UserAgent              string `toml:"user_agent"`
	MaxBodyBytes           int64  `toml:"max_body_bytes"`
	BreakerFailures        int    `toml:"breaker_failures"`
	BreakerCooldownSeconds int    `toml:"breaker_cooldown_seconds"`
}

// MinInterval returns the pacing interval as a duration.
func (g Gateway) MinInterval() time.Duration {
	return time.Duration(g.MinIntervalMillis) * time.Millisecond
}

// RequestTimeout returns the per-request HTTP timeout.
func (g Gateway) RequestTimeout() time.Duration {
	return time.Duration(g.RequestTimeoutSeconds) * time.Second
}

// BreakerCooldown returns how long an open breaker waits before probing again.
func (g Gateway) BreakerCooldown() time.Duration {
	return time.Duration(g.BreakerCooldownSeconds) * time.Second
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey       string `toml:"api_key"`
	BaseURL      string `toml:"base_url"`
	ImageBaseURL string `toml:"image_base_url"`
	Language     string `toml:"language"`
}

// GoogleBooks contains configuration for the Google Books volumes API.
type GoogleBooks struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// OpenLibrary contains configuration for the Open Library search API.
type OpenLibrary struct {
	BaseURL       string `toml:"base_url"`
	CoversBaseURL string `toml:"covers_base_url"`
}

// ITunes contains configuration for the iTunes Search API (podcasts).
type ITunes struct {
	BaseURL string `toml:"base_url"`
	Country string `toml:"country"`
}

// Enrichment controls the orchestrator and batch controller.
type Enrichment struct {
	BatchSize int `toml:"batch_size"`
}

// Disambiguation holds the creator auto-resolve policy.
type Disambiguation struct {
	MaxResults      int      `toml:"max_results"`
	DominanceRatio  float64  `toml:"dominance_ratio"`
	AbsoluteTop     int64    `toml:"absolute_top"`
	RunnerUpCeiling int64    `toml:"runner_up_ceiling"`
	Denylist        []string `toml:"denylist"`
}

// Link describes a link-only rating provider.
type Link struct {
	Name        string `toml:"name"`
	URLTemplate string `toml:"url_template"`
}

// DomainSources wires adapters, the disambiguation searcher and link-only
// providers for one catalog domain. Adapters are listed in merge priority order.
type DomainSources struct {
	Adapters []string `toml:"adapters"`
	Search   string   `toml:"search"`
	Links    []Link   `toml:"links"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the engine.
//
// Configuration sections by subsystem:
//   - Gateway: pacing interval, HTTP timeout, circuit breaker thresholds
//   - TMDB, GoogleBooks, OpenLibrary, ITunes: provider endpoints and keys
//   - Enrichment: batch chunk size
//   - Disambiguation: creator auto-resolve thresholds and denylist
//   - Domains: per-domain adapter priority, searcher and link-only providers
//   - Logging: log format and level
type Config struct {
	Gateway        Gateway                  `toml:"gateway"`
	TMDB           TMDB                     `toml:"tmdb"`
	GoogleBooks    GoogleBooks              `toml:"google_books"`
	OpenLibrary    OpenLibrary              `toml:"open_library"`
	ITunes         ITunes                   `toml:"itunes"`
	Enrichment     Enrichment               `toml:"enrichment"`
	Disambiguation Disambiguation           `toml:"disambiguation"`
	Domains        map[string]DomainSources `toml:"domains"`
	Logging        Logging                  `toml:"logging"`
}

// Domain returns the sources configured for name. Unknown names yield an
// empty definition.
func (c *Config) Domain(name string) DomainSources {
	if c == nil || c.Domains == nil {
		return DomainSources{}
	}
	return c.Domains[strings.ToLower(strings.TrimSpace(name))]
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bookshelf/config.toml")
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	defaults := cfg.Domains
	cfg.Domains = nil
	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if cfg.Domains == nil {
		cfg.Domains = make(map[string]DomainSources, len(defaults))
	}
	for name, sources := range defaults {
		if _, overridden := cfg.Domains[name]; !overridden {
			cfg.Domains[name] = sources
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bookshelf.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}
