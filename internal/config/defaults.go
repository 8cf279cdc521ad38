package config

const (
	defaultMinIntervalMillis      = 200
	defaultRequestTimeoutSeconds  = 15
	defaultUserAgent              = "bookshelf/dev (+https://github.com/radhajain/bookshelf)"
	defaultMaxBodyBytes           = 4 << 20
	defaultBreakerFailures        = 5
	defaultBreakerCooldownSeconds = 60
	defaultTMDBBaseURL            = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL       = "https://image.tmdb.org/t/p/w500"
	defaultTMDBLanguage           = "en-US"
	defaultGoogleBooksBaseURL     = "https://www.googleapis.com/books/v1"
	defaultOpenLibraryBaseURL     = "https://openlibrary.org"
	defaultOpenLibraryCoversURL   = "https://covers.openlibrary.org"
	defaultITunesBaseURL          = "https://itunes.apple.com"
	defaultITunesCountry          = "US"
	defaultBatchSize              = 3
	defaultMaxResults             = 20
	defaultDominanceRatio         = 3.0
	defaultAbsoluteTop            = 100
	defaultRunnerUpCeiling        = 20
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// DefaultDenylist lists title markers of derivative works (summaries, study
// aids) that are noise when deciding who wrote a title.
var DefaultDenylist = []string{
	"summary of",
	"summary & analysis",
	"study guide",
	"abridged",
	"cliffnotes",
	"cliff notes",
	"sparknotes",
	"companion",
	"workbook",
	"analysis of",
	"key takeaways",
	"quicklet",
	"trivia",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Gateway: Gateway{
			MinIntervalMillis:      defaultMinIntervalMillis,
			RequestTimeoutSeconds:  defaultRequestTimeoutSeconds,
			UserAgent:              defaultUserAgent,
			MaxBodyBytes:           defaultMaxBodyBytes,
			BreakerFailures:        defaultBreakerFailures,
			BreakerCooldownSeconds: defaultBreakerCooldownSeconds,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			ImageBaseURL: defaultTMDBImageBaseURL,
			Language:     defaultTMDBLanguage,
		},
		GoogleBooks: GoogleBooks{
			BaseURL: defaultGoogleBooksBaseURL,
		},
		OpenLibrary: OpenLibrary{
			BaseURL:       defaultOpenLibraryBaseURL,
			CoversBaseURL: defaultOpenLibraryCoversURL,
		},
		ITunes: ITunes{
			BaseURL: defaultITunesBaseURL,
			Country: defaultITunesCountry,
		},
		Enrichment: Enrichment{
			BatchSize: defaultBatchSize,
		},
		Disambiguation: Disambiguation{
			MaxResults:      defaultMaxResults,
			DominanceRatio:  defaultDominanceRatio,
			AbsoluteTop:     defaultAbsoluteTop,
			RunnerUpCeiling: defaultRunnerUpCeiling,
			Denylist:        append([]string(nil), DefaultDenylist...),
		},
		Domains: defaultDomains(),
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultDomains() map[string]DomainSources {
	return map[string]DomainSources{
		"book": {
			Adapters: []string{AdapterGoogleBooks, AdapterOpenLibrary},
			Search:   AdapterOpenLibrary,
			Links: []Link{
				{Name: "Goodreads", URLTemplate: "https://www.goodreads.com/search?q={query}"},
				{Name: "StoryGraph", URLTemplate: "https://app.thestorygraph.com/browse?search_term={query}"},
			},
		},
		"movie": {
			Adapters: []string{AdapterTMDB},
			Links: []Link{
				{Name: "Letterboxd", URLTemplate: "https://letterboxd.com/search/{query}/"},
				{Name: "IMDb", URLTemplate: "https://www.imdb.com/find/?q={query}"},
				{Name: "Rotten Tomatoes", URLTemplate: "https://www.rottentomatoes.com/search?search={query}"},
			},
		},
		"tv": {
			Adapters: []string{AdapterTMDB},
			Links: []Link{
				{Name: "IMDb", URLTemplate: "https://www.imdb.com/find/?q={query}"},
				{Name: "Rotten Tomatoes", URLTemplate: "https://www.rottentomatoes.com/search?search={query}"},
			},
		},
		"podcast": {
			Adapters: []string{AdapterITunes},
			Search:   AdapterITunes,
			Links: []Link{
				{Name: "Podchaser", URLTemplate: "https://www.podchaser.com/search/podcasts/q/{query}"},
			},
		},
		"article": {
			Links: []Link{
				{Name: "Google Scholar", URLTemplate: "https://scholar.google.com/scholar?q={query}"},
			},
		},
	}
}
