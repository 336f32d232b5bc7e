// Package httpclient builds the shared client every provider uses to talk
// to remote sites.
package httpclient

import (
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/vrsandeep/manga-sync/internal/metrics"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Options configures New. Zero values fall back to the defaults below.
type Options struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Metrics           metrics.Recorder
}

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// New returns a client with a cookie jar, a browser user agent, a request
// timeout and a per-host rate limit. Cookies set by a site are replayed on
// later requests to the same site.
func New(opts Options) (*http.Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Jar:     jar,
		Transport: &transport{
			base:      http.DefaultTransport.(*http.Transport).Clone(),
			userAgent: opts.UserAgent,
			limiters:  newHostLimiters(opts.RequestsPerSecond),
			metrics:   opts.Metrics,
		},
	}, nil
}

type transport struct {
	base      http.RoundTripper
	userAgent string
	limiters  *hostLimiters
	metrics   metrics.Recorder
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Hostname()
	if err := t.limiters.wait(req, host); err != nil {
		return nil, err
	}

	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	t.metrics.RecordFetchLatency(host, time.Since(start))
	if err != nil {
		return nil, err
	}
	t.metrics.RecordHTTPStatus(host, resp.StatusCode)
	return resp, nil
}

// CloseIdleConnections forwards to the underlying transport.
func (t *transport) CloseIdleConnections() {
	if ci, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}

// hostLimiters hands out one token bucket per remote host. A non-positive
// rate disables limiting.
type hostLimiters struct {
	limit rate.Limit
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

func newHostLimiters(perSecond float64) *hostLimiters {
	return &hostLimiters{limit: rate.Limit(perSecond), hosts: make(map[string]*rate.Limiter)}
}

func (h *hostLimiters) wait(req *http.Request, host string) error {
	if h.limit <= 0 {
		return nil
	}
	h.mu.Lock()
	l, ok := h.hosts[host]
	if !ok {
		l = rate.NewLimiter(h.limit, 1)
		h.hosts[host] = l
	}
	h.mu.Unlock()
	return l.Wait(req.Context())
}
