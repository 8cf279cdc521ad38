package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookshelf/internal/catalog"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the command tree against a config path that does not
// exist, so built-in defaults apply and no user file leaks into the test.
func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("GOOGLE_BOOKS_API_KEY", "")

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	full := append([]string{"--config", filepath.Join(home, "missing.toml"), "--log-level", "error"}, args...)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestParseBatchLine(t *testing.T) {
	tests := []struct {
		line    string
		ok      bool
		title   string
		creator string
	}{
		{"Dune", true, "Dune", ""},
		{"  Dune |  Frank Herbert ", true, "Dune", "Frank Herbert"},
		{"", false, "", ""},
		{"# reading list", false, "", ""},
		{" | Nobody", false, "", ""},
		{"A | B | C", true, "A", "B | C"},
	}
	for _, tt := range tests {
		item, ok := parseBatchLine(tt.line, catalog.DomainBook)
		if ok != tt.ok {
			t.Fatalf("parseBatchLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
		}
		if !ok {
			continue
		}
		if item.Title != tt.title || item.Creator != tt.creator || item.Domain != catalog.DomainBook {
			t.Fatalf("parseBatchLine(%q) = %+v", tt.line, item)
		}
	}
}

func TestReadBatchItemsUsesLineNumbersAsIDs(t *testing.T) {
	items, err := readBatchItems(strings.NewReader("Dune\n\n# skip\nEmma | Jane Austen\n"), catalog.DomainBook)
	if err != nil {
		t.Fatalf("readBatchItems returned error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "1" || items[1].ID != "4" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestLinksCommandPrintsSearchLinks(t *testing.T) {
	res := runCLI(t, "", "links", "--domain", "movie", "--title", "Heat")
	if res.err != nil {
		t.Fatalf("links returned error: %v (stderr %s)", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "Letterboxd\t-\t-\thttps://letterboxd.com/search/Heat/") {
		t.Fatalf("expected letterboxd link, got %q", res.stdout)
	}
	if lines := strings.Count(res.stdout, "\n"); lines != 3 {
		t.Fatalf("expected three links, got %d: %q", lines, res.stdout)
	}
}

func TestEnrichArticleJSON(t *testing.T) {
	res := runCLI(t, "", "enrich", "-d", "article", "-t", "Attention Is All You Need", "--json")
	if res.err != nil {
		t.Fatalf("enrich returned error: %v", res.err)
	}
	var item catalog.EnrichedItem
	if err := json.Unmarshal([]byte(res.stdout), &item); err != nil {
		t.Fatalf("decode output: %v (%q)", err, res.stdout)
	}
	if item.Title != "Attention Is All You Need" || len(item.Ratings) != 1 || item.Ratings[0].Source != "Google Scholar" {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestDisambiguateWithoutSearcher(t *testing.T) {
	res := runCLI(t, "", "disambiguate", "-d", "article", "Some", "Paper")
	if res.err != nil {
		t.Fatalf("disambiguate returned error: %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != "Some Paper: no creator found (no_searcher)" {
		t.Fatalf("unexpected output %q", res.stdout)
	}
}

func TestBatchFromStdinWithSkip(t *testing.T) {
	res := runCLI(t, "First\nSecond | Someone\nThird\n", "batch", "-d", "article", "--skip", "1", "--json")
	if res.err != nil {
		t.Fatalf("batch returned error: %v", res.err)
	}
	var items []catalog.EnrichedItem
	if err := json.Unmarshal([]byte(res.stdout), &items); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(items) != 2 || items[0].Title != "Second" || items[0].Creator != "Someone" || items[1].ID != "3" {
		t.Fatalf("unexpected items %+v", items)
	}
	if !strings.Contains(res.stderr, "enriched 2/2") {
		t.Fatalf("expected progress on stderr, got %q", res.stderr)
	}
}

func TestInvalidDomain(t *testing.T) {
	res := runCLI(t, "", "links", "-d", "comic", "-t", "Saga")
	if res.err == nil || !strings.Contains(res.err.Error(), "invalid --domain") {
		t.Fatalf("expected domain error, got %v", res.err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "bookshelf.toml")

	res := runCLI(t, "", "config", "init", target)
	if res.err != nil {
		t.Fatalf("config init returned error: %v", res.err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	res = runCLI(t, "", "config", "init", target)
	if res.err == nil || !strings.Contains(res.err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", res.err)
	}

	res = runCLI(t, "", "config", "validate")
	if res.err != nil {
		t.Fatalf("config validate returned error: %v", res.err)
	}
	if !strings.Contains(res.stdout, "Configuration valid") || !strings.Contains(res.stdout, "defaults were used") {
		t.Fatalf("unexpected validate output %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "book: adapters google_books, open_library, 2 links") {
		t.Fatalf("expected book domain summary, got %q", res.stdout)
	}
}
