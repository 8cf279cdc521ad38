package metrics_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"bookshelf/internal/metrics"
)

func TestRecordersUpdateInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveRequest("open_library", "ok", 120*time.Millisecond)
	m.ObserveRequest("open_library", "ok", 80*time.Millisecond)
	m.ObserveRequest("tmdb", "rate_limited", 0)
	m.CacheLookup("hit")
	m.Decision("auto_resolved")
	m.Chunk("completed", 3)

	if got := testutil.ToFloat64(m.GatewayRequests.WithLabelValues("open_library", "ok")); got != 2 {
		t.Fatalf("expected 2 ok requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.GatewayRequests.WithLabelValues("tmdb", "rate_limited")); got != 1 {
		t.Fatalf("expected 1 rate limited request, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); got != 1 {
		t.Fatalf("expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.BatchItems); got != 3 {
		t.Fatalf("expected 3 batch items, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveRequest("x", "ok", time.Second)
	m.ObserveWait(time.Second)
	m.BreakerChanged("x", "open")
	m.AdapterOutcome("x", "ok")
	m.CacheLookup("miss")
	m.SetCacheEntries(1)
	m.Decision("empty")
	m.Chunk("aborted", 0)
}

func TestNewWithNilRegistererCanRepeat(t *testing.T) {
	metrics.New(nil)
	metrics.New(nil)
}

func TestWriteTextSkipsZeroSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.CacheLookup("miss")
	m.ObserveWait(10 * time.Millisecond)

	var buf bytes.Buffer
	if err := metrics.WriteText(&buf, reg); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `bookshelf_cache_lookups_total{result="miss"} 1`) {
		t.Fatalf("missing cache line in %q", out)
	}
	if !strings.Contains(out, "bookshelf_gateway_pacing_wait_seconds_count 1") {
		t.Fatalf("missing wait histogram count in %q", out)
	}
	if strings.Contains(out, "bookshelf_batch_items_enriched_total") {
		t.Fatalf("zero counter should be skipped: %q", out)
	}
}
