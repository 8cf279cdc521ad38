package sources

import (
	"strconv"
	"strings"

	"bookshelf/internal/textutil"
)

// BestMatch returns the index of the title that best matches query: an exact
// folded match wins, then the first containment match in either direction,
// then the first title. It returns -1 for an empty list.
func BestMatch(query string, titles []string) int {
	if len(titles) == 0 {
		return -1
	}
	folded := textutil.Fold(query)
	contains := -1
	for idx, title := range titles {
		candidate := textutil.Fold(title)
		if candidate == "" {
			continue
		}
		if candidate == folded {
			return idx
		}
		if contains < 0 && (strings.Contains(candidate, folded) || strings.Contains(folded, candidate)) {
			contains = idx
		}
	}
	if contains >= 0 {
		return contains
	}
	return 0
}

// YearFromDate extracts the leading four-digit year from dates such as
// "2005", "2005-03" or "2005-03-01T00:00:00Z".
func YearFromDate(value string) int {
	value = strings.TrimSpace(value)
	if len(value) < 4 {
		return 0
	}
	year, err := strconv.Atoi(value[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// FormatRating renders a rating as "4.2/5".
func FormatRating(value, scale float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64) + "/" + strconv.FormatFloat(scale, 'f', -1, 64)
}
