// Package googlebooks adapts the Google Books volumes API to the source
// adapter and searcher contracts.
package googlebooks

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
	Provider = "google_books"
	// DisplayName is the rating source name shown to users.
	DisplayName = "Google Books"

	ratingScale  = 5
	fetchResults = 5
	maxResults   = 40
)

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string       `json:"title"`
	Subtitle            string       `json:"subtitle"`
	Authors             []string     `json:"authors"`
	PublishedDate       string       `json:"publishedDate"`
	Description         string       `json:"description"`
	IndustryIdentifiers []identifier `json:"industryIdentifiers"`
	Categories          []string     `json:"categories"`
	AverageRating       float64      `json:"averageRating"`
	RatingsCount        int64        `json:"ratingsCount"`
	ImageLinks          struct {
		Thumbnail      string `json:"thumbnail"`
		SmallThumbnail string `json:"smallThumbnail"`
	} `json:"imageLinks"`
	InfoLink            string `json:"infoLink"`
	CanonicalVolumeLink string `json:"canonicalVolumeLink"`
}

type identifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Client queries Google Books through the shared gateway.
type Client struct {
	caller  sources.Caller
	baseURL string
	apiKey  string
}

var (
	_ sources.Adapter  = (*Client)(nil)
	_ sources.Searcher = (*Client)(nil)
)

// New creates a Google Books client. The API key is optional.
func New(caller sources.Caller, baseURL, apiKey string) (*Client, error) {
	if caller == nil {
		return nil, errors.New("google books: gateway required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("google books: base url required")
	}
	return &Client{caller: caller, baseURL: baseURL, apiKey: strings.TrimSpace(apiKey)}, nil
}

// Name returns the display name used for rating entries.
func (c *Client) Name() string { return DisplayName }

// Fetch looks up the best volume for title (and creator when known).
func (c *Client) Fetch(ctx context.Context, title, creator string) (catalog.SourceRecord, error) {
	query := "intitle:" + strings.TrimSpace(title)
	if creator = strings.TrimSpace(creator); creator != "" {
		query += " inauthor:" + creator
	}
	payload, err := c.volumes(ctx, query, fetchResults)
	if err != nil {
		return catalog.SourceRecord{}, err
	}
	if len(payload.Items) == 0 {
		return catalog.SourceRecord{}, services.Wrap(services.ErrNotFound, Provider, "fetch", fmt.Sprintf("no volumes for %q", title), nil)
	}
	titles := make([]string, len(payload.Items))
	for i, item := range payload.Items {
		titles[i] = item.VolumeInfo.Title
	}
	best := payload.Items[sources.BestMatch(title, titles)]
	return toRecord(best), nil
}

// Search returns volumes matching title in Google's relevance order.
// Popularity is the ratings count.
func (c *Client) Search(ctx context.Context, title string, limit int) ([]sources.SearchResult, error) {
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}
	payload, err := c.volumes(ctx, "intitle:"+strings.TrimSpace(title), limit)
	if err != nil {
		return nil, err
	}
	results := make([]sources.SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		result := sources.SearchResult{
			Title:      item.VolumeInfo.Title,
			Popularity: item.VolumeInfo.RatingsCount,
		}
		if len(item.VolumeInfo.Authors) > 0 {
			result.Creator = item.VolumeInfo.Authors[0]
		}
		results = append(results, result)
	}
	return results, nil
}

func (c *Client) volumes(ctx context.Context, query string, limit int) (*volumesResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	resp, err := c.caller.Call(ctx, gateway.Request{
		Provider: Provider,
		URL:      c.baseURL + "/volumes?" + params.Encode(),
	})
	if err != nil {
		return nil, fmt.Errorf("google books volumes: %w", err)
	}
	var payload volumesResponse
	if err := gateway.DecodeJSON(Provider, resp, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func toRecord(v volume) catalog.SourceRecord {
	info := v.VolumeInfo
	record := catalog.SourceRecord{
		Description: strings.TrimSpace(info.Description),
		CoverURL:    secureURL(firstNonEmpty(info.ImageLinks.Thumbnail, info.ImageLinks.SmallThumbnail)),
		Subjects:    info.Categories,
		URL:         firstNonEmpty(info.CanonicalVolumeLink, info.InfoLink),
		Year:        sources.YearFromDate(info.PublishedDate),
	}
	if len(info.Authors) > 0 {
		record.Creator = info.Authors[0]
	}
	if info.RatingsCount > 0 {
		record.Rating = &catalog.Rating{
			Value:   info.AverageRating,
			Count:   info.RatingsCount,
			Scale:   ratingScale,
			Display: sources.FormatRating(info.AverageRating, ratingScale),
		}
	}
	ids := make(map[string]string)
	if v.ID != "" {
		ids[Provider] = v.ID
	}
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			ids["isbn_13"] = id.Identifier
		case "ISBN_10":
			ids["isbn_10"] = id.Identifier
		}
	}
	if len(ids) > 0 {
		record.Identifiers = ids
	}
	return record
}

func secureURL(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
