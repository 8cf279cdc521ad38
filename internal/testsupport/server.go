package testsupport

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// ProviderServer serves canned JSON bodies by request path and counts hits.
// Unknown paths answer 404.
type ProviderServer struct {
	URL string

	mu     sync.Mutex
	bodies map[string]string
	hits   map[string]int
}

// NewProviderServer starts a server that is closed when the test ends.
func NewProviderServer(t testing.TB, bodies map[string]string) *ProviderServer {
	t.Helper()
	ps := &ProviderServer{bodies: bodies, hits: make(map[string]int)}
	server := httptest.NewServer(http.HandlerFunc(ps.serve))
	t.Cleanup(server.Close)
	ps.URL = server.URL
	return ps
}

func (ps *ProviderServer) serve(w http.ResponseWriter, r *http.Request) {
	ps.mu.Lock()
	ps.hits[r.URL.Path]++
	body, ok := ps.bodies[r.URL.Path]
	ps.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// Hits returns how many requests reached path.
func (ps *ProviderServer) Hits(path string) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.hits[path]
}

// Total returns the number of requests across all paths.
func (ps *ProviderServer) Total() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	total := 0
	for _, n := range ps.hits {
		total += n
	}
	return total
}
