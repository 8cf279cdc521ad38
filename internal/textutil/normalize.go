package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the comparison form of input.
func Fold(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	stripped := stripMarks(input)
	// Treat symbols that commonly stand in for words as the word itself.
	stripped = strings.ReplaceAll(stripped, "&", " and ")

	var builder strings.Builder
	builder.Grow(len(stripped))
	pendingSpace := false
	for _, r := range strings.ToLower(stripped) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && builder.Len() > 0 {
				builder.WriteByte(' ')
			}
			pendingSpace = false
			builder.WriteRune(r)
		case r == '\'' || r == '’':
			// apostrophes join: "Ender's" -> "enders"
		default:
			pendingSpace = true
		}
	}
	return builder.String()
}

// CollapseSpace trims input and reduces internal whitespace runs to one space.
func CollapseSpace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// ContainsFold reports whether needle occurs in haystack ignoring case and
// surrounding whitespace differences.
func ContainsFold(haystack, needle string) bool {
	h := strings.ToLower(CollapseSpace(haystack))
	n := strings.ToLower(CollapseSpace(needle))
	if n == "" {
		return false
	}
	return strings.Contains(h, n)
}

// TitleCase renders input with the first letter of each word upper-cased.
func TitleCase(input string) string {
	trimmed := CollapseSpace(input)
	if trimmed == "" {
		return ""
	}
	return cases.Title(language.Und).String(trimmed)
}

func stripMarks(input string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}
