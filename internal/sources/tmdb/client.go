package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"bookshelf/internal/gateway"
	"bookshelf/internal/sources"
)

// Provider is the gateway and configuration identifier.
const Provider = "tmdb"

// Result represents a single TMDB search match.
type Result struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
}

// DisplayTitle returns the movie title or show name.
func (r Result) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Person is a cast, crew or created_by entry.
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Details is the movie or tv details payload with credits appended.
type Details struct {
	Result
	IMDbID     string   `json:"imdb_id"`
	PosterPath string   `json:"poster_path"`
	Genres     []Genre  `json:"genres"`
	CreatedBy  []Person `json:"created_by"`
	Credits    struct {
		Crew []Person `json:"crew"`
	} `json:"credits"`
	MediaType string `json:"-"`
}

// Client provides access to the TMDB API.
type Client struct {
	caller   sources.Caller
	apiKey   string
	baseURL  string
	language string
}

// New creates a TMDB client.
func New(caller sources.Caller, apiKey, baseURL, language string) (*Client, error) {
	if caller == nil {
		return nil, errors.New("tmdb gateway required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	return &Client{
		caller:   caller,
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: strings.TrimSpace(language),
	}, nil
}

// SearchMovie searches TMDB movies for the supplied title.
func (c *Client) SearchMovie(ctx context.Context, query string) (*Response, error) {
	return c.search(ctx, "/search/movie", query)
}

// SearchTV searches TMDB tv shows for the supplied title.
func (c *Client) SearchTV(ctx context.Context, query string) (*Response, error) {
	return c.search(ctx, "/search/tv", query)
}

func (c *Client) search(ctx context.Context, path, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	var payload Response
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetMovieDetails fetches movie details and credits by TMDB ID.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*Details, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	details, err := c.details(ctx, fmt.Sprintf("/movie/%d", movieID))
	if err != nil {
		return nil, err
	}
	details.MediaType = "movie"
	return details, nil
}

// GetTVDetails fetches tv show details and credits by TMDB ID.
func (c *Client) GetTVDetails(ctx context.Context, showID int64) (*Details, error) {
	if showID <= 0 {
		return nil, errors.New("show id must be positive")
	}
	details, err := c.details(ctx, fmt.Sprintf("/tv/%d", showID))
	if err != nil {
		return nil, err
	}
	details.MediaType = "tv"
	return details, nil
}

func (c *Client) details(ctx context.Context, path string) (*Details, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")
	var payload Details
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	resp, err := c.caller.Call(ctx, gateway.Request{
		Provider: Provider,
		URL:      c.baseURL + path + "?" + params.Encode(),
	})
	if err != nil {
		return fmt.Errorf("tmdb %s: %w", path, err)
	}
	return gateway.DecodeJSON(Provider, resp, dst)
}
