// Package itunes adapts the iTunes Search API for podcasts. It is the default
// creator searcher for the podcast domain.
package itunes

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"bookshelf/internal/catalog"
	"bookshelf/internal/gateway"
	"bookshelf/internal/services"
	"bookshelf/internal/sources"
)

const (
	// Provider is the gateway and configuration identifier.
	Provider = "itunes"
	// DisplayName is the rating source name shown to users.
	DisplayName = "Apple Podcasts"

	fetchResults = 5
	maxResults   = 200
)

type searchResponse struct {
	ResultCount int      `json:"resultCount"`
	Results     []result `json:"results"`
}

type result struct {
	CollectionID      int64    `json:"collectionId"`
	CollectionName    string   `json:"collectionName"`
	ArtistName        string   `json:"artistName"`
	CollectionViewURL string   `json:"collectionViewUrl"`
	ArtworkURL600     string   `json:"artworkUrl600"`
	ArtworkURL100     string   `json:"artworkUrl100"`
	ReleaseDate       string   `json:"releaseDate"`
	PrimaryGenreName  string   `json:"primaryGenreName"`
	Genres            []string `json:"genres"`
	TrackCount        int64    `json:"trackCount"`
}

// Client queries iTunes Search through the shared gateway.
type Client struct {
	caller  sources.Caller
	baseURL string
	country string
}

var (
	_ sources.Adapter  = (*Client)(nil)
	_ sources.Searcher = (*Client)(nil)
)

// New creates an iTunes client.
func New(caller sources.Caller, baseURL, country string) (*Client, error) {
	if caller == nil {
		return nil, errors.New("itunes: gateway required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("itunes: base url required")
	}
	return &Client{caller: caller, baseURL: baseURL, country: strings.TrimSpace(country)}, nil
}

// Name returns the display name used for rating entries.
func (c *Client) Name() string { return DisplayName }

// Fetch looks up the podcast best matching title. The creator, when known,
// narrows the search term.
func (c *Client) Fetch(ctx context.Context, title, creator string) (catalog.SourceRecord, error) {
	term := strings.TrimSpace(title)
	if creator = strings.TrimSpace(creator); creator != "" {
		term += " " + creator
	}
	payload, err := c.search(ctx, term, fetchResults)
	if err != nil {
		return catalog.SourceRecord{}, err
	}
	if len(payload.Results) == 0 {
		return catalog.SourceRecord{}, services.Wrap(services.ErrNotFound, Provider, "fetch", fmt.Sprintf("no podcasts for %q", title), nil)
	}
	titles := make([]string, len(payload.Results))
	for i, r := range payload.Results {
		titles[i] = r.CollectionName
	}
	return toRecord(payload.Results[sources.BestMatch(title, titles)]), nil
}

// Search returns podcasts matching title. Popularity is the episode count.
func (c *Client) Search(ctx context.Context, title string, limit int) ([]sources.SearchResult, error) {
	payload, err := c.search(ctx, strings.TrimSpace(title), limit)
	if err != nil {
		return nil, err
	}
	results := make([]sources.SearchResult, 0, len(payload.Results))
	for _, r := range payload.Results {
		results = append(results, sources.SearchResult{
			Title:      r.CollectionName,
			Creator:    r.ArtistName,
			Popularity: r.TrackCount,
		})
	}
	return results, nil
}

func (c *Client) search(ctx context.Context, term string, limit int) (*searchResponse, error) {
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}
	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "podcast")
	params.Set("entity", "podcast")
	params.Set("limit", strconv.Itoa(limit))
	if c.country != "" {
		params.Set("country", c.country)
	}
	resp, err := c.caller.Call(ctx, gateway.Request{
		Provider: Provider,
		URL:      c.baseURL + "/search?" + params.Encode(),
	})
	if err != nil {
		return nil, fmt.Errorf("itunes search: %w", err)
	}
	var payload searchResponse
	if err := gateway.DecodeJSON(Provider, resp, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func toRecord(r result) catalog.SourceRecord {
	record := catalog.SourceRecord{
		Creator: r.ArtistName,
		URL:     r.CollectionViewURL,
		Year:    sources.YearFromDate(r.ReleaseDate),
	}
	if r.ArtworkURL600 != "" {
		record.CoverURL = r.ArtworkURL600
	} else {
		record.CoverURL = r.ArtworkURL100
	}
	for _, genre := range r.Genres {
		// iTunes tags every podcast with the umbrella "Podcasts" genre.
		if genre != "" && genre != "Podcasts" {
			record.Subjects = append(record.Subjects, genre)
		}
	}
	if len(record.Subjects) == 0 && r.PrimaryGenreName != "" {
		record.Subjects = []string{r.PrimaryGenreName}
	}
	if r.CollectionID > 0 {
		record.Identifiers = map[string]string{Provider: strconv.FormatInt(r.CollectionID, 10)}
	}
	return record
}
