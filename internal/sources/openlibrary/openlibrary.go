// Package openlibrary adapts the Open Library search API. It is the default
// creator searcher for books.
package openlibrary

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
	Provider = "open_library"
	// DisplayName is the rating source name shown to users.
	DisplayName = "Open Library"

	ratingScale  = 5
	fetchResults = 5
	maxSubjects  = 10
	searchFields = "key,title,author_name,first_publish_year,isbn,subject,cover_i,ratings_average,ratings_count,edition_count"
)

type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []doc `json:"docs"`
}

type doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Subject          []string `json:"subject"`
	CoverID          int64    `json:"cover_i"`
	RatingsAverage   float64  `json:"ratings_average"`
	RatingsCount     int64    `json:"ratings_count"`
	EditionCount     int64    `json:"edition_count"`
}

// Client queries Open Library through the shared gateway.
type Client struct {
	caller    sources.Caller
	baseURL   string
	coversURL string
}

var (
	_ sources.Adapter  = (*Client)(nil)
	_ sources.Searcher = (*Client)(nil)
)

// New creates an Open Library client.
func New(caller sources.Caller, baseURL, coversURL string) (*Client, error) {
	if caller == nil {
		return nil, errors.New("open library: gateway required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("open library: base url required")
	}
	return &Client{
		caller:    caller,
		baseURL:   baseURL,
		coversURL: strings.TrimRight(strings.TrimSpace(coversURL), "/"),
	}, nil
}

// Name returns the display name used for rating entries.
func (c *Client) Name() string { return DisplayName }

// Fetch looks up the best work for title (and creator when known).
func (c *Client) Fetch(ctx context.Context, title, creator string) (catalog.SourceRecord, error) {
	params := url.Values{}
	params.Set("title", strings.TrimSpace(title))
	if creator = strings.TrimSpace(creator); creator != "" {
		params.Set("author", creator)
	}
	payload, err := c.search(ctx, params, fetchResults)
	if err != nil {
		return catalog.SourceRecord{}, err
	}
	if len(payload.Docs) == 0 {
		return catalog.SourceRecord{}, services.Wrap(services.ErrNotFound, Provider, "fetch", fmt.Sprintf("no works for %q", title), nil)
	}
	titles := make([]string, len(payload.Docs))
	for i, d := range payload.Docs {
		titles[i] = d.Title
	}
	return c.toRecord(payload.Docs[sources.BestMatch(title, titles)]), nil
}

// Search returns works matching title. Popularity is the ratings count,
// falling back to the edition count for works nobody has rated.
func (c *Client) Search(ctx context.Context, title string, limit int) ([]sources.SearchResult, error) {
	params := url.Values{}
	params.Set("title", strings.TrimSpace(title))
	payload, err := c.search(ctx, params, limit)
	if err != nil {
		return nil, err
	}
	results := make([]sources.SearchResult, 0, len(payload.Docs))
	for _, d := range payload.Docs {
		result := sources.SearchResult{Title: d.Title, Popularity: d.RatingsCount}
		if result.Popularity == 0 {
			result.Popularity = d.EditionCount
		}
		if len(d.AuthorName) > 0 {
			result.Creator = d.AuthorName[0]
		}
		results = append(results, result)
	}
	return results, nil
}

func (c *Client) search(ctx context.Context, params url.Values, limit int) (*searchResponse, error) {
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	params.Set("fields", searchFields)
	resp, err := c.caller.Call(ctx, gateway.Request{
		Provider: Provider,
		URL:      c.baseURL + "/search.json?" + params.Encode(),
	})
	if err != nil {
		return nil, fmt.Errorf("open library search: %w", err)
	}
	var payload searchResponse
	if err := gateway.DecodeJSON(Provider, resp, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) toRecord(d doc) catalog.SourceRecord {
	record := catalog.SourceRecord{Year: d.FirstPublishYear}
	if len(d.AuthorName) > 0 {
		record.Creator = d.AuthorName[0]
	}
	if d.Key != "" {
		record.URL = c.baseURL + d.Key
	}
	if d.CoverID > 0 && c.coversURL != "" {
		record.CoverURL = fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, d.CoverID)
	}
	if len(d.Subject) > 0 {
		subjects := d.Subject
		if len(subjects) > maxSubjects {
			subjects = subjects[:maxSubjects]
		}
		record.Subjects = append([]string(nil), subjects...)
	}
	if d.RatingsCount > 0 {
		record.Rating = &catalog.Rating{
			Value:   d.RatingsAverage,
			Count:   d.RatingsCount,
			Scale:   ratingScale,
			Display: sources.FormatRating(d.RatingsAverage, ratingScale),
		}
	}
	ids := make(map[string]string)
	if key := strings.TrimPrefix(d.Key, "/works/"); key != "" {
		ids[Provider] = key
	}
	for _, isbn := range d.ISBN {
		switch len(isbn) {
		case 13:
			if _, ok := ids["isbn_13"]; !ok {
				ids["isbn_13"] = isbn
			}
		case 10:
			if _, ok := ids["isbn_10"]; !ok {
				ids["isbn_10"] = isbn
			}
		}
	}
	if len(ids) > 0 {
		record.Identifiers = ids
	}
	return record
}
