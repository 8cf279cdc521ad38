package tmdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bookshelf/internal/catalog"
	"bookshelf/internal/services"
	"bookshelf/internal/sources"
)

const (
	// DisplayName is the rating source name shown to users.
	DisplayName = "TMDB"

	ratingScale = 10
	siteURL     = "https://www.themoviedb.org"
)

// Adapter enriches movies or tv shows from TMDB.
type Adapter struct {
	client    *Client
	mediaType string
	imageBase string
}

var _ sources.Adapter = (*Adapter)(nil)

// NewMovieAdapter returns an adapter for the movie domain.
func NewMovieAdapter(client *Client, imageBase string) *Adapter {
	return &Adapter{client: client, mediaType: "movie", imageBase: strings.TrimRight(imageBase, "/")}
}

// NewTVAdapter returns an adapter for the tv domain.
func NewTVAdapter(client *Client, imageBase string) *Adapter {
	return &Adapter{client: client, mediaType: "tv", imageBase: strings.TrimRight(imageBase, "/")}
}

// Name returns the display name used for rating entries.
func (a *Adapter) Name() string { return DisplayName }

// Fetch searches for title, then loads details for the best match.
func (a *Adapter) Fetch(ctx context.Context, title, _ string) (catalog.SourceRecord, error) {
	var (
		resp *Response
		err  error
	)
	if a.mediaType == "tv" {
		resp, err = a.client.SearchTV(ctx, title)
	} else {
		resp, err = a.client.SearchMovie(ctx, title)
	}
	if err != nil {
		return catalog.SourceRecord{}, err
	}
	if resp == nil || len(resp.Results) == 0 {
		return catalog.SourceRecord{}, services.Wrap(services.ErrNotFound, Provider, "search", fmt.Sprintf("no %s results for %q", a.mediaType, title), nil)
	}
	titles := make([]string, len(resp.Results))
	for i, res := range resp.Results {
		titles[i] = res.DisplayTitle()
	}
	best := resp.Results[sources.BestMatch(title, titles)]

	var details *Details
	if a.mediaType == "tv" {
		details, err = a.client.GetTVDetails(ctx, best.ID)
	} else {
		details, err = a.client.GetMovieDetails(ctx, best.ID)
	}
	if err != nil {
		return catalog.SourceRecord{}, err
	}
	return a.toRecord(details), nil
}

func (a *Adapter) toRecord(d *Details) catalog.SourceRecord {
	record := catalog.SourceRecord{
		Creator:     creatorOf(d),
		Description: strings.TrimSpace(d.Overview),
		URL:         fmt.Sprintf("%s/%s/%d", siteURL, d.MediaType, d.ID),
		Year:        sources.YearFromDate(firstDate(d.ReleaseDate, d.FirstAirDate)),
		Identifiers: map[string]string{Provider: strconv.FormatInt(d.ID, 10)},
	}
	if d.IMDbID != "" {
		record.Identifiers["imdb"] = d.IMDbID
	}
	if d.PosterPath != "" && a.imageBase != "" {
		record.CoverURL = a.imageBase + d.PosterPath
	}
	for _, genre := range d.Genres {
		if genre.Name != "" {
			record.Subjects = append(record.Subjects, genre.Name)
		}
	}
	if d.VoteCount > 0 {
		record.Rating = &catalog.Rating{
			Value:   d.VoteAverage,
			Count:   d.VoteCount,
			Scale:   ratingScale,
			Display: sources.FormatRating(d.VoteAverage, ratingScale),
		}
	}
	return record
}

func creatorOf(d *Details) string {
	if d.MediaType == "tv" {
		names := make([]string, 0, len(d.CreatedBy))
		for _, person := range d.CreatedBy {
			if person.Name != "" {
				names = append(names, person.Name)
			}
		}
		return strings.Join(names, ", ")
	}
	for _, person := range d.Credits.Crew {
		if person.Job == "Director" && person.Name != "" {
			return person.Name
		}
	}
	return ""
}

func firstDate(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
