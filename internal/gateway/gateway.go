package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"bookshelf/internal/logging"
	"bookshelf/internal/metrics"
	"bookshelf/internal/services"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 4 << 20
	defaultUserAgent    = "bookshelf/dev"
)

// Request describes one outbound call. Method defaults to GET.
type Request struct {
	Provider string
	Method   string
	URL      string
	Header   http.Header
}

// Response is a fully read provider response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Latency    time.Duration
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Options configures a Gateway.
type Options struct {
	MinInterval     time.Duration
	Timeout         time.Duration
	UserAgent       string
	MaxBodyBytes    int64
	BreakerFailures int
	BreakerCooldown time.Duration
	HTTPClient      *http.Client
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
}

// Gateway paces, classifies and guards outbound HTTP calls.
type Gateway struct {
	limiter      *rate.Limiter
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	failures     int
	cooldown     time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*Response]
}

// New builds a Gateway. A zero MinInterval disables pacing.
func New(opts Options) *Gateway {
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Gateway{
		limiter:      rate.NewLimiter(limit, 1),
		client:       client,
		userAgent:    userAgent,
		maxBodyBytes: maxBody,
		failures:     opts.BreakerFailures,
		cooldown:     opts.BreakerCooldown,
		logger:       logging.NewComponentLogger(opts.Logger, "gateway"),
		metrics:      opts.Metrics,
		breakers:     make(map[string]*gobreaker.CircuitBreaker[*Response]),
	}
}

// Call performs req after waiting for the shared pacing slot.
func (g *Gateway) Call(ctx context.Context, req Request) (*Response, error) {
	provider := strings.TrimSpace(req.Provider)
	if provider == "" {
		provider = "unknown"
	}
	ctx = services.WithProvider(ctx, provider)
	logger := logging.WithContext(ctx, g.logger)

	breaker := g.breaker(provider)
	if breaker == nil {
		resp, err := g.do(ctx, provider, req)
		g.record(logger, provider, resp, err)
		return resp, err
	}

	resp, err := breaker.Execute(func() (*Response, error) {
		return g.do(ctx, provider, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = services.Wrap(services.ErrSourceUnavailable, "gateway", provider, "circuit open", err)
		g.metrics.ObserveRequest(provider, "breaker_open", 0)
		logger.Debug("provider breaker open, skipping call", logging.String("url", redact(req.URL)))
		return nil, err
	}
	g.record(logger, provider, resp, err)
	return resp, err
}

func (g *Gateway) do(ctx context.Context, provider string, req Request) (*Response, error) {
	waitStart := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Wait refuses up front when the deadline is too close to ever get a slot.
		return nil, fmt.Errorf("pacing wait: %w", context.DeadlineExceeded)
	}
	g.metrics.ObserveWait(time.Since(waitStart))

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrMalformed, "gateway", provider, "build request", err)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("User-Agent", g.userAgent)
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	requestStart := time.Now()
	resp, err := g.client.Do(httpReq)
	latency := time.Since(requestStart)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrRateLimited, "gateway", provider,
			fmt.Sprintf("network failure (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBodyBytes+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrRateLimited, "gateway", provider, "read response body", err)
	}
	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Latency:    latency,
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return out, services.Wrap(services.ErrRateLimited, "gateway", provider,
			fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	case resp.StatusCode >= 500:
		return out, services.Wrap(services.ErrSourceUnavailable, "gateway", provider,
			fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	case int64(len(body)) > g.maxBodyBytes:
		return out, services.Wrap(services.ErrMalformed, "gateway", provider,
			fmt.Sprintf("response body exceeds %d bytes", g.maxBodyBytes), nil)
	}
	return out, nil
}

func (g *Gateway) record(logger *slog.Logger, provider string, resp *Response, err error) {
	var latency time.Duration
	if resp != nil {
		latency = resp.Latency
	}
	switch {
	case err == nil:
		outcome := "ok"
		if !resp.OK() {
			outcome = "client_error"
		}
		g.metrics.ObserveRequest(provider, outcome, latency)
		logger.Debug("provider call complete",
			logging.Int("status", resp.StatusCode),
			logging.Duration("latency", latency),
		)
	case errors.Is(err, services.ErrRateLimited):
		g.metrics.ObserveRequest(provider, services.Kind(err), latency)
		logging.WarnWithContext(logger, "provider rate limited", "gateway_rate_limited",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "wait before retrying; resume the batch from the returned offset"),
			logging.String(logging.FieldImpact, "current enrichment and batch halt"),
		)
	case errors.Is(err, services.ErrSourceUnavailable):
		g.metrics.ObserveRequest(provider, services.Kind(err), latency)
		logging.WarnWithContext(logger, "provider unavailable", "gateway_source_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "provider returned a server error; check its status page"),
		)
	default:
		g.metrics.ObserveRequest(provider, services.Kind(err), latency)
	}
}

// breaker returns the provider's breaker, creating it on first use. Nil when
// breakers are disabled.
func (g *Gateway) breaker(provider string) *gobreaker.CircuitBreaker[*Response] {
	if g.failures <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if cb, ok := g.breakers[provider]; ok {
		return cb
	}
	threshold := uint32(g.failures)
	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        provider,
		MaxRequests: 1,
		Timeout:     g.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Only provider outages count against the breaker.
		IsSuccessful: func(err error) bool {
			return !errors.Is(err, services.ErrSourceUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.metrics.BreakerChanged(name, stateLabel(to))
			g.logger.Info("provider breaker state changed",
				logging.String(logging.FieldProvider, name),
				logging.String("from", stateLabel(from)),
				logging.String("to", stateLabel(to)),
			)
		},
	})
	g.breakers[provider] = cb
	return cb
}

// BreakerState reports the breaker state for provider ("closed" when
// breakers are disabled or the provider has not been called yet).
func (g *Gateway) BreakerState(provider string) string {
	g.mu.Lock()
	cb, ok := g.breakers[provider]
	g.mu.Unlock()
	if !ok {
		return stateLabel(gobreaker.StateClosed)
	}
	return stateLabel(cb.State())
}

func stateLabel(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// redact strips query strings, which may carry API keys, from logged URLs.
func redact(raw string) string {
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}
