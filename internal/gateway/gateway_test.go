package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"bookshelf/internal/gateway"
	"bookshelf/internal/metrics"
	"bookshelf/internal/services"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestCallPacesConcurrentRequests(t *testing.T) {
	var (
		mu       sync.Mutex
		arrivals []time.Time
	)
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	})

	gw := gateway.New(gateway.Options{MinInterval: 60 * time.Millisecond})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := gw.Call(context.Background(), gateway.Request{Provider: "test", URL: server.URL}); err != nil {
				t.Errorf("Call returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(arrivals) != 4 {
		t.Fatalf("expected 4 arrivals, got %d", len(arrivals))
	}
	sort.Slice(arrivals, func(i, j int) bool { return arrivals[i].Before(arrivals[j]) })
	for i := 1; i < len(arrivals); i++ {
		if gap := arrivals[i].Sub(arrivals[i-1]); gap < 45*time.Millisecond {
			t.Fatalf("calls %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestCallClassifiesStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"too many requests", http.StatusTooManyRequests, services.ErrRateLimited},
		{"server error", http.StatusInternalServerError, services.ErrSourceUnavailable},
		{"bad gateway", http.StatusBadGateway, services.ErrSourceUnavailable},
		{"not found passes through", http.StatusNotFound, nil},
		{"ok", http.StatusOK, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			gw := gateway.New(gateway.Options{})
			resp, err := gw.Call(context.Background(), gateway.Request{Provider: "test", URL: server.URL})
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.StatusCode != tt.status {
					t.Fatalf("expected status %d, got %d", tt.status, resp.StatusCode)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCallNetworkFailureIsRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	gw := gateway.New(gateway.Options{})
	_, err := gw.Call(context.Background(), gateway.Request{Provider: "test", URL: url})
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for refused connection, got %v", err)
	}
}

func TestCallTimeoutIsRateLimited(t *testing.T) {
	release := make(chan struct{})
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	gw := gateway.New(gateway.Options{Timeout: 50 * time.Millisecond})
	_, err := gw.Call(context.Background(), gateway.Request{Provider: "test", URL: server.URL})
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for timeout, got %v", err)
	}
}

func TestCallCancellationIsNotRateLimited(t *testing.T) {
	var hits atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	gw := gateway.New(gateway.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Call(ctx, gateway.Request{Provider: "test", URL: server.URL})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("cancellation must not be reported as rate limiting: %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no network call, got %d", hits.Load())
	}
}

func TestBreakerOpensAfterConsecutiveOutages(t *testing.T) {
	var hits atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	gw := gateway.New(gateway.Options{BreakerFailures: 2, BreakerCooldown: time.Minute})

	for i := 0; i < 4; i++ {
		_, err := gw.Call(context.Background(), gateway.Request{Provider: "flaky", URL: server.URL})
		if !errors.Is(err, services.ErrSourceUnavailable) {
			t.Fatalf("call %d: expected ErrSourceUnavailable, got %v", i, err)
		}
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected breaker to stop network calls after 2 failures, got %d hits", got)
	}
	if state := gw.BreakerState("flaky"); state != "open" {
		t.Fatalf("expected open breaker, got %q", state)
	}
	if state := gw.BreakerState("other"); state != "closed" {
		t.Fatalf("expected untouched provider closed, got %q", state)
	}
}

func TestBreakerIgnoresRateLimits(t *testing.T) {
	var hits atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	gw := gateway.New(gateway.Options{BreakerFailures: 1, BreakerCooldown: time.Minute})
	for i := 0; i < 3; i++ {
		if _, err := gw.Call(context.Background(), gateway.Request{Provider: "busy", URL: server.URL}); !errors.Is(err, services.ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}
	}
	if hits.Load() != 3 {
		t.Fatalf("expected every call to reach the server, got %d", hits.Load())
	}
}

func TestCallCapsBodyAndSendsUserAgent(t *testing.T) {
	var agent atomic.Value
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"padding":"0123456789012345678901234567890123456789"}`))
	})
	gw := gateway.New(gateway.Options{UserAgent: "bookshelf-test/1.0", MaxBodyBytes: 16})

	_, err := gw.Call(context.Background(), gateway.Request{Provider: "test", URL: server.URL})
	if !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("expected ErrMalformed for oversized body, got %v", err)
	}
	if got, _ := agent.Load().(string); got != "bookshelf-test/1.0" {
		t.Fatalf("unexpected user agent %q", got)
	}
}

func TestCallRecordsMetrics(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	m := metrics.New(prometheus.NewRegistry())
	gw := gateway.New(gateway.Options{Metrics: m})

	_, _ = gw.Call(context.Background(), gateway.Request{Provider: "p", URL: server.URL})
	_, _ = gw.Call(context.Background(), gateway.Request{Provider: "p", URL: server.URL + "?fail=1"})

	if got := testutil.ToFloat64(m.GatewayRequests.WithLabelValues("p", "ok")); got != 1 {
		t.Fatalf("expected 1 ok request, got %v", got)
	}
	if got := testutil.ToFloat64(m.GatewayRequests.WithLabelValues("p", "rate_limited")); got != 1 {
		t.Fatalf("expected 1 rate limited request, got %v", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	if err := gateway.DecodeJSON("p", &gateway.Response{StatusCode: 200, Body: []byte(`{"name":"x"}`)}, &out); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if out.Name != "x" {
		t.Fatalf("unexpected decode result %+v", out)
	}
	if err := gateway.DecodeJSON("p", &gateway.Response{StatusCode: 404}, &out); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := gateway.DecodeJSON("p", &gateway.Response{StatusCode: 200, Body: []byte(`{`)}, &out); !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
