package enrichment_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bookshelf/internal/catalog"
	"bookshelf/internal/enrichcache"
	"bookshelf/internal/enrichment"
	"bookshelf/internal/services"
	"bookshelf/internal/sources"
)

type fakeAdapter struct {
	name   string
	delay  time.Duration
	mu     sync.Mutex
	record catalog.SourceRecord
	err    error
	block  bool
	calls  atomic.Int32
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context, title, creator string) (catalog.SourceRecord, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return catalog.SourceRecord{}, ctx.Err()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return catalog.SourceRecord{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record, f.err
}

func (f *fakeAdapter) set(record catalog.SourceRecord) {
	f.mu.Lock()
	f.record = record
	f.mu.Unlock()
}

func rating(value float64, count int64) *catalog.Rating {
	return &catalog.Rating{Value: value, Count: count, Scale: 5}
}

func newOrchestrator(t *testing.T, domain catalog.Domain, adapters []sources.Adapter, links []sources.LinkProvider) (*enrichment.Orchestrator, *enrichcache.Cache) {
	t.Helper()
	reg := sources.NewRegistry()
	reg.Register(domain, sources.Domain{Adapters: adapters, Links: links})
	cache := enrichcache.New(nil, nil)
	orch, err := enrichment.New(enrichment.Options{Registry: reg, Cache: cache})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return orch, cache
}

func book(title, creator string) catalog.Item {
	return catalog.Item{ID: "1", Title: title, Creator: creator, Domain: catalog.DomainBook}
}

func TestEnrichCacheHitIsIdempotent(t *testing.T) {
	a := &fakeAdapter{name: "A", record: catalog.SourceRecord{Description: "desc"}}
	orch, _ := newOrchestrator(t, catalog.DomainBook, []sources.Adapter{a}, nil)

	first, err := orch.Enrich(context.Background(), book("Dune", ""))
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	second, err := orch.Enrich(context.Background(), book("  dune ", ""))
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	if first != second {
		t.Fatal("expected cache hit to return the same pointer")
	}
	if a.calls.Load() != 1 {
		t.Fatalf("expected one adapter call, got %d", a.calls.Load())
	}
}

func TestEnrichMergesInPriorityOrderNotArrivalOrder(t *testing.T) {
	slow := &fakeAdapter{name: "Primary", delay: 40 * time.Millisecond, record: catalog.SourceRecord{
		Description: "primary description",
		Year:        1965,
	}}
	fast := &fakeAdapter{name: "Secondary", record: catalog.SourceRecord{
		Description: "secondary description",
		CoverURL:    "https://covers.example/dune.jpg",
		Creator:     "Frank Herbert",
		Year:        2005,
		Subjects:    []string{"Fiction"},
	}}
	orch, _ := newOrchestrator(t, catalog.DomainBook, []sources.Adapter{slow, fast}, nil)

	got, err := orch.Enrich(context.Background(), book("Dune", ""))
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	if got.Description != "primary description" || got.Year != 1965 {
		t.Fatalf("expected primary fields to win, got %+v", got)
	}
	if got.CoverURL != "https://covers.example/dune.jpg" || len(got.Subjects) != 1 {
		t.Fatalf("expected secondary to fill gaps, got %+v", got)
	}
	if got.Creator != "Frank Herbert" {
		t.Fatalf("expected discovered creator, got %q", got.Creator)
	}
	if len(got.Sources) != 2 || got.Sources[0] != "Primary" || got.Sources[1] != "Secondary" {
		t.Fatalf("unexpected sources %v", got.Sources)
	}
}

func TestEnrichCallerCreatorWins(t *testing.T) {
	a := &fakeAdapter{name: "A", record: catalog.SourceRecord{Creator: "Someone Else"}}
	orch, _ := newOrchestrator(t, catalog.DomainBook, []sources.Adapter{a}, nil)

	got, err := orch.Enrich(context.Background(), book("Dune", "Frank Herbert"))
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	if got.Creator != "Frank Herbert" {
		t.Fatalf("expected caller creator, got %q", got.Creator)
	}
}

func TestEnrichRatingSourcesAreUnique(t *testing.T) {
	a := &fakeAdapter{name: "Goodreads", record: catalog.SourceRecord{Rating: rating(4.1, 10)}}
	b := &fakeAdapter{name: "Goodreads", record: catalog.SourceRecord{Rating: rating(3.0, 5)}}
	c := &fakeAdapter{name: "Open Library", record: catalog.SourceRecord{URL: "https://openlibrary.org/works/OL1W"}}
	links := []sources.LinkProvider{
		{Name: "Goodreads", URLTemplate: "https://www.goodreads.com/search?q={query}"},
		{Name: "StoryGraph", URLTemplate: "https://app.thestorygraph.com/browse?search_term={query}"},
		{Name: "StoryGraph", URLTemplate: "https://duplicate.example/{query}"},
	}
	orch, _ := newOrchestrator(t, catalog.DomainBook, []sources.Adapter{a, b, c}, links)

	got, err := orch.Enrich(context.Background(), book("Dune", "Frank Herbert"))
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	seen := map[string]bool{}
	for _, entry := range got.Ratings {
		if seen[entry.Source] {
			t.Fatalf("duplicate rating source %q in %+v", entry.Source, got.Ratings)
		}
		seen[entry.Source] = true
	}
	if len(got.Ratings) != 3 {
		t.Fatalf("expected Goodreads, Open Library and StoryGraph, got %+v", got.Ratings)
	}
	goodreads, _ := got.Rating("Goodreads")
	if goodreads.Rating == nil || *goodreads.Rating != 4.1 {
		t.Fatalf("expected first Goodreads rating to win, got %+v", goodreads)
	}
	openLibrary, _ := got.Rating("Open Library")
	if openLibrary.Rating != nil || openLibrary.URL == "" {
		t.Fatalf("expected URL-only adapter entry, got %+v", openLibrary)
	}
	story, _ := got.Rating("StoryGraph")
	if !story.LinkOnly() || story.URL != "https://app.thestorygraph.com/browse?search_term=Dune+Frank+Herbert" {
		t.Fatalf("unexpected link entry %+v", story)
	}
}

func TestEnrichSoftFailureYieldsEmptyRecord(t *testing.T) {
	broken := &fakeAdapter{name: "Broken", err: services.Wrap(services.ErrMalformed, "test", "fetch", "bad json", nil)}
	unavailable := &fakeAdapter{name: "Down", err: services.ErrSourceUnavailable}
	plain := &fakeAdapter{name: "Plain", err: errors.New("anything else")}
	good := &fakeAdapter{name: "Good", record: catalog.SourceRecord{Description: "ok"}}
	orch, _ := newOrchestrator(t, catalog.DomainBook, []sources.Adapter{broken, unavailable, plain, good}, nil)

	got, err := orch.Enrich(context.Background(), book("Dune", ""))
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	if got.Description != "ok" {
		t.Fatalf("expected surviving adapter data, got %+v", got)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "Good" {
		t.Fatalf("expected only Good to contribute, got %v", got.Sources)
	}
}

func TestEnrichRateLimitAbortsAndCancelsSiblings(t *testing.T) {
	limited := &fakeAdapter{name: "Limited", err: services.Wrap(services.ErrRateLimited, "gateway", "test", "status 429", nil)}
	waiting := &fakeAdapter{name: "Waiting", block: true}
	orch, cache := newOrchestrator(t, catalog.DomainBook, []sources.Adapter{waiting, limited}, nil)

	_, err := orch.Enrich(context.Background(), book("Dune", ""))
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if cache.Count() != 0 {
		t.Fatalf("rate limited enrichment must not be cached")
	}
	if waiting.calls.Load() != 1 {
		t.Fatalf("expected blocked sibling to have started")
	}
}

func TestEnrichValidation(t *testing.T) {
	orch, _ := newOrchestrator(t, catalog.DomainBook, nil, nil)
	if _, err := orch.Enrich(context.Background(), book("   ", "")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank title, got %v", err)
	}
	if _, err := orch.Enrich(context.Background(), catalog.Item{Title: "x", Domain: "comic"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown domain, got %v", err)
	}
}

func TestRefreshReplacesCachedEntry(t *testing.T) {
	a := &fakeAdapter{name: "A", record: catalog.SourceRecord{Description: "old"}}
	orch, _ := newOrchestrator(t, catalog.DomainBook, []sources.Adapter{a}, nil)

	first, err := orch.Enrich(context.Background(), book("Dune", ""))
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	a.set(catalog.SourceRecord{Description: "new"})

	refreshed, err := orch.Refresh(context.Background(), book("Dune", ""))
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if refreshed == first || refreshed.Description != "new" {
		t.Fatalf("expected a fresh item, got %+v", refreshed)
	}
	if first.Description != "old" {
		t.Fatalf("previous item must not be mutated, got %q", first.Description)
	}
	after, _ := orch.Enrich(context.Background(), book("Dune", ""))
	if after != refreshed {
		t.Fatal("expected Enrich to return the refreshed entry")
	}
	if a.calls.Load() != 2 {
		t.Fatalf("expected two adapter calls, got %d", a.calls.Load())
	}
}

func TestEnrichConcurrentCallsShareOneFetch(t *testing.T) {
	a := &fakeAdapter{name: "A", delay: 50 * time.Millisecond, record: catalog.SourceRecord{Description: "d"}}
	orch, _ := newOrchestrator(t, catalog.DomainBook, []sources.Adapter{a}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := orch.Enrich(context.Background(), book("Dune", "")); err != nil {
				t.Errorf("Enrich returned error: %v", err)
			}
		}()
	}
	wg.Wait()
	if a.calls.Load() != 1 {
		t.Fatalf("expected single-flight fetch, got %d calls", a.calls.Load())
	}
}

func TestEnrichArticleGetsLinksOnly(t *testing.T) {
	links := []sources.LinkProvider{{Name: "Google Scholar", URLTemplate: "https://scholar.google.com/scholar?q={query}"}}
	orch, _ := newOrchestrator(t, catalog.DomainArticle, nil, links)

	got, err := orch.Enrich(context.Background(), catalog.Item{Title: "Attention Is All You Need", Domain: catalog.DomainArticle})
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	if len(got.Sources) != 0 || len(got.Ratings) != 1 || !got.Ratings[0].LinkOnly() {
		t.Fatalf("unexpected article enrichment %+v", got)
	}
	if got.Ratings[0].URL != "https://scholar.google.com/scholar?q=Attention+Is+All+You+Need" {
		t.Fatalf("unexpected link %q", got.Ratings[0].URL)
	}
}

func TestLinksNeedNoNetwork(t *testing.T) {
	a := &fakeAdapter{name: "A"}
	links := []sources.LinkProvider{{Name: "IMDb", URLTemplate: "https://www.imdb.com/find/?q={query}"}}
	orch, _ := newOrchestrator(t, catalog.DomainMovie, []sources.Adapter{a}, links)

	entries := orch.Links(catalog.Item{Title: "Heat", Domain: catalog.DomainMovie})
	if len(entries) != 1 || entries[0].URL != "https://www.imdb.com/find/?q=Heat" {
		t.Fatalf("unexpected links %+v", entries)
	}
	if a.calls.Load() != 0 {
		t.Fatal("Links must not call adapters")
	}
}
