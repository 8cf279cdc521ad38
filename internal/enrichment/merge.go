package enrichment

import (
	"strings"
	"time"

	"bookshelf/internal/catalog"
	"bookshelf/internal/sources"
)

type adapterResult struct {
	name   string
	record catalog.SourceRecord
}

// merge builds the enriched item from results, which must be in priority
// order. Each field takes the first non-empty value; nothing is concatenated.
func merge(item catalog.Item, results []adapterResult, links []sources.LinkProvider, now time.Time) *catalog.EnrichedItem {
	out := &catalog.EnrichedItem{Item: item, EnrichedAt: now}
	out.Creator = strings.TrimSpace(item.Creator)

	for _, res := range results {
		rec := res.record
		if rec.IsEmpty() {
			continue
		}
		out.Sources = append(out.Sources, res.name)
		if out.Creator == "" {
			out.Creator = strings.TrimSpace(rec.Creator)
		}
		if out.Description == "" {
			out.Description = rec.Description
		}
		if out.CoverURL == "" {
			out.CoverURL = rec.CoverURL
		}
		if out.URL == "" {
			out.URL = rec.URL
		}
		if out.Year == 0 {
			out.Year = rec.Year
		}
		if len(out.Identifiers) == 0 && len(rec.Identifiers) > 0 {
			out.Identifiers = make(map[string]string, len(rec.Identifiers))
			for k, v := range rec.Identifiers {
				out.Identifiers[k] = v
			}
		}
		if len(out.Subjects) == 0 && len(rec.Subjects) > 0 {
			out.Subjects = append([]string(nil), rec.Subjects...)
		}
	}

	seen := make(map[string]bool)
	for _, res := range results {
		if seen[res.name] {
			continue
		}
		rec := res.record
		if rec.Rating == nil && rec.URL == "" {
			continue
		}
		entry := catalog.RatingEntry{Source: res.name, URL: rec.URL}
		if rec.Rating != nil {
			value := rec.Rating.Value
			count := rec.Rating.Count
			entry.Rating = &value
			entry.Count = &count
			entry.Display = rec.Rating.Display
		}
		seen[res.name] = true
		out.Ratings = append(out.Ratings, entry)
	}
	out.Ratings = appendLinks(out.Ratings, seen, links, item.Title, out.Creator)
	return out
}

func appendLinks(entries []catalog.RatingEntry, seen map[string]bool, links []sources.LinkProvider, title, creator string) []catalog.RatingEntry {
	for _, link := range links {
		if seen[link.Name] {
			continue
		}
		seen[link.Name] = true
		entries = append(entries, catalog.RatingEntry{
			Source: link.Name,
			URL:    link.BuildURL(title, creator),
		})
	}
	return entries
}
