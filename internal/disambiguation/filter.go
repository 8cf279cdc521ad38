package disambiguation

import (
	"strings"

	"bookshelf/internal/sources"
	"bookshelf/internal/textutil"
)

// DefaultDenylist lists title markers of derivative works.
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

// Candidate is a search result that survived filtering.
type Candidate struct {
	Title      string
	Creator    string
	SurnameKey string
	Popularity int64
}

// filterCandidates drops results whose title does not match query, that look
// like derivative works, or that have no creator. Markers the query itself
// contains are not applied, so "The Companion" can still be disambiguated.
func filterCandidates(query string, results []sources.SearchResult, denylist []string) []Candidate {
	queryLower := strings.ToLower(query)
	active := make([]string, 0, len(denylist))
	for _, marker := range denylist {
		if marker != "" && !strings.Contains(queryLower, marker) {
			active = append(active, marker)
		}
	}

	candidates := make([]Candidate, 0, len(results))
	for _, res := range results {
		if !textutil.ContainsFold(res.Title, query) && !textutil.ContainsFold(query, res.Title) {
			continue
		}
		if isDerivative(res.Title, active) {
			continue
		}
		creator := textutil.CollapseSpace(res.Creator)
		if creator == "" {
			continue
		}
		popularity := res.Popularity
		if popularity < 0 {
			popularity = 0
		}
		candidates = append(candidates, Candidate{
			Title:      res.Title,
			Creator:    creator,
			SurnameKey: SurnameKey(creator),
			Popularity: popularity,
		})
	}
	return candidates
}

func isDerivative(title string, markers []string) bool {
	lower := strings.ToLower(title)
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
