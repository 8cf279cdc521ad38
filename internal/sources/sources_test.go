package sources_test

import (
	"context"
	"testing"

	"bookshelf/internal/catalog"
	"bookshelf/internal/sources"
)

func TestBuildURLEncodesTitleAndCreator(t *testing.T) {
	provider := sources.LinkProvider{Name: "Goodreads", URLTemplate: "https://www.goodreads.com/search?q={query}"}

	got := provider.BuildURL("Dune", "Frank Herbert")
	want := "https://www.goodreads.com/search?q=Dune+Frank+Herbert"
	if got != want {
		t.Fatalf("BuildURL = %q, want %q", got, want)
	}
	if again := provider.BuildURL("Dune", "Frank Herbert"); again != got {
		t.Fatalf("BuildURL not deterministic: %q vs %q", again, got)
	}
}

func TestBuildURLWithoutCreator(t *testing.T) {
	provider := sources.LinkProvider{Name: "Letterboxd", URLTemplate: "https://letterboxd.com/search/{query}/"}
	got := provider.BuildURL("  Heat & Dust ", "")
	want := "https://letterboxd.com/search/Heat+%26+Dust/"
	if got != want {
		t.Fatalf("BuildURL = %q, want %q", got, want)
	}
}

type namedAdapter string

func (n namedAdapter) Name() string { return string(n) }

func (n namedAdapter) Fetch(context.Context, string, string) (catalog.SourceRecord, error) {
	return catalog.SourceRecord{}, nil
}

func TestRegistryKeepsPriorityOrder(t *testing.T) {
	reg := sources.NewRegistry()
	reg.Register(catalog.DomainBook, sources.Domain{
		Adapters: []sources.Adapter{namedAdapter("first"), namedAdapter("second")},
		Links:    []sources.LinkProvider{{Name: "Goodreads", URLTemplate: "x{query}"}},
	})

	adapters := reg.Adapters(catalog.DomainBook)
	if len(adapters) != 2 || adapters[0].Name() != "first" || adapters[1].Name() != "second" {
		t.Fatalf("unexpected adapters: %v", adapters)
	}
	if len(reg.Links(catalog.DomainBook)) != 1 {
		t.Fatalf("expected one link provider")
	}
	if reg.Searcher(catalog.DomainBook) != nil {
		t.Fatalf("expected no searcher")
	}
}

func TestRegistryUnconfiguredDomainIsEmpty(t *testing.T) {
	reg := sources.NewRegistry()
	if got := reg.Adapters(catalog.DomainArticle); len(got) != 0 {
		t.Fatalf("expected no adapters, got %v", got)
	}
	if reg.Searcher(catalog.DomainArticle) != nil {
		t.Fatal("expected nil searcher")
	}
	var nilRegistry *sources.Registry
	if nilRegistry.Links(catalog.DomainBook) != nil {
		t.Fatal("expected nil registry to return no links")
	}
}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		query  string
		titles []string
		want   int
	}{
		{"Dune", []string{"Dune Messiah", "Dune", "Children of Dune"}, 1},
		{"The Hobbit", []string{"Summary", "The Hobbit: or There and Back Again"}, 1},
		{"Cosmos", []string{"Pale Blue Dot", "Contact"}, 0},
		{"Anything", nil, -1},
		{"Ender's Game", []string{"Enders Game"}, 0},
	}
	for _, tt := range tests {
		if got := sources.BestMatch(tt.query, tt.titles); got != tt.want {
			t.Errorf("BestMatch(%q, %v) = %d, want %d", tt.query, tt.titles, got, tt.want)
		}
	}
}

func TestYearFromDate(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"1965", 1965},
		{"1965-08-01", 1965},
		{"2019-03-01T08:00:00Z", 2019},
		{"", 0},
		{"n/a", 0},
	}
	for _, tt := range tests {
		if got := sources.YearFromDate(tt.input); got != tt.want {
			t.Errorf("YearFromDate(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFormatRating(t *testing.T) {
	if got := sources.FormatRating(4.25, 5); got != "4.2/5" && got != "4.3/5" {
		t.Fatalf("unexpected rating display %q", got)
	}
	if got := sources.FormatRating(7.8, 10); got != "7.8/10" {
		t.Fatalf("unexpected rating display %q", got)
	}
}
