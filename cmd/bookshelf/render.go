package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"bookshelf/internal/catalog"
	"bookshelf/internal/disambiguation"
	"bookshelf/internal/textutil"
)

const (
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

// shouldPrettyPrint reports whether writer is a terminal. Pipes and files get
// plain tab-separated output.
func shouldPrettyPrint(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderItem(out io.Writer, item *catalog.EnrichedItem) {
	pretty := shouldPrettyPrint(out)
	heading := item.Title
	if pretty {
		heading = ansiBold + heading + ansiReset
	}
	fmt.Fprintln(out, heading)

	fields := itemFields(item)
	if pretty {
		fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, fields, nil))
	} else {
		writePlain(out, fields)
	}

	renderRatings(out, item.Ratings, pretty)
}

func itemFields(item *catalog.EnrichedItem) [][]string {
	var rows [][]string
	add := func(name, value string) {
		if strings.TrimSpace(value) != "" {
			rows = append(rows, []string{name, value})
		}
	}
	add("Domain", textutil.TitleCase(item.Domain.String()))
	add("Creator", item.Creator)
	if item.Year > 0 {
		add("Year", strconv.Itoa(item.Year))
	}
	add("Description", item.Description)
	add("Cover", item.CoverURL)
	add("URL", item.URL)
	add("Subjects", strings.Join(item.Subjects, ", "))
	add("Identifiers", formatIdentifiers(item.Identifiers))
	add("Sources", strings.Join(item.Sources, ", "))
	return rows
}

func renderRatings(out io.Writer, entries []catalog.RatingEntry, pretty bool) {
	if len(entries) == 0 {
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{entry.Source, ratingText(entry), countText(entry), entry.URL})
	}
	if pretty {
		fmt.Fprintln(out, renderTable([]string{"Source", "Rating", "Votes", "Link"}, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignLeft}))
		return
	}
	writePlain(out, rows)
}

func renderResolution(out io.Writer, title string, res disambiguation.Resolution) {
	pretty := shouldPrettyPrint(out)
	switch {
	case res.Resolved():
		fmt.Fprintf(out, "%s: %s (%s)\n", title, res.Creators[0], res.Decision)
	case res.NeedsClarification:
		fmt.Fprintf(out, "%s: several creators match, pick one\n", title)
	default:
		fmt.Fprintf(out, "%s: no creator found (%s)\n", title, res.Decision)
	}
	if len(res.Groups) == 0 {
		return
	}
	rows := make([][]string, 0, len(res.Groups))
	for _, g := range res.Groups {
		rows = append(rows, []string{g.Name, strconv.FormatInt(g.Total, 10), strconv.FormatInt(g.Max, 10), strconv.Itoa(g.Observations)})
	}
	if pretty {
		fmt.Fprintln(out, renderTable([]string{"Creator", "Total", "Max", "Matches"}, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
		return
	}
	writePlain(out, rows)
}

func ratingText(entry catalog.RatingEntry) string {
	switch {
	case entry.Display != "":
		return entry.Display
	case entry.Rating != nil:
		return strconv.FormatFloat(*entry.Rating, 'f', 1, 64)
	default:
		return "-"
	}
}

func countText(entry catalog.RatingEntry) string {
	if entry.Count == nil {
		return "-"
	}
	return strconv.FormatInt(*entry.Count, 10)
}

func formatIdentifiers(ids map[string]string) string {
	if len(ids) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ids))
	for k := range ids {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+ids[k])
	}
	return strings.Join(parts, " ")
}

func writePlain(out io.Writer, rows [][]string) {
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join(row, "\t"))
	}
}
