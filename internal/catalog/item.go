package catalog

import "time"

// Item is a bare catalog entry as created by the surrounding application.
// The engine treats it as read-only input.
type Item struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Creator string `json:"creator,omitempty"`
	Domain  Domain `json:"domain"`
	Genre   string `json:"genre,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Rating is a provider's score for an item.
type Rating struct {
	Value   float64 `json:"value"`
	Count   int64   `json:"count"`
	Scale   float64 `json:"scale"`
	Display string  `json:"display,omitempty"`
}

// SourceRecord is one provider's partial contribution. Zero values mean the
// provider had nothing to say about that field.
type SourceRecord struct {
	Creator     string            `json:"creator,omitempty"`
	Description string            `json:"description,omitempty"`
	Rating      *Rating           `json:"rating,omitempty"`
	CoverURL    string            `json:"cover_url,omitempty"`
	Identifiers map[string]string `json:"identifiers,omitempty"`
	Subjects    []string          `json:"subjects,omitempty"`
	URL         string            `json:"url,omitempty"`
	Year        int               `json:"year,omitempty"`
}

// IsEmpty reports whether the record contributes nothing.
func (r SourceRecord) IsEmpty() bool {
	return r.Creator == "" &&
		r.Description == "" &&
		r.Rating == nil &&
		r.CoverURL == "" &&
		len(r.Identifiers) == 0 &&
		len(r.Subjects) == 0 &&
		r.URL == "" &&
		r.Year == 0
}

// RatingEntry is one row of an enriched item's ratings list. Link-only
// providers leave Rating and Count nil and only carry a URL.
type RatingEntry struct {
	Source  string   `json:"source"`
	Rating  *float64 `json:"rating"`
	Count   *int64   `json:"count"`
	URL     string   `json:"url,omitempty"`
	Display string   `json:"display,omitempty"`
}

// LinkOnly reports whether the entry comes from a provider without a rating API.
func (e RatingEntry) LinkOnly() bool {
	return e.Rating == nil && e.URL != ""
}

// EnrichedItem is the merged result for one catalog item. Values are shared
// by reference from the cache and must not be mutated after construction.
type EnrichedItem struct {
	Item
	Description string            `json:"description,omitempty"`
	CoverURL    string            `json:"cover_url,omitempty"`
	Identifiers map[string]string `json:"identifiers,omitempty"`
	Subjects    []string          `json:"subjects,omitempty"`
	URL         string            `json:"url,omitempty"`
	Year        int               `json:"year,omitempty"`
	Ratings     []RatingEntry     `json:"ratings"`
	Sources     []string          `json:"sources,omitempty"`
	EnrichedAt  time.Time         `json:"enriched_at"`
}

// Rating returns the entry for source, if present.
func (e *EnrichedItem) Rating(source string) (RatingEntry, bool) {
	if e == nil {
		return RatingEntry{}, false
	}
	for _, entry := range e.Ratings {
		if entry.Source == source {
			return entry, true
		}
	}
	return RatingEntry{}, false
}
