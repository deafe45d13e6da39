// Package collyfetcher implements the engine's Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/ckolb-dev/webscout/internal/page"
	"github.com/ckolb-dev/webscout/internal/ratelimit"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// Renderer executes a page with JavaScript enabled and returns the final
// markup. Optional; plain HTTP is used when absent.
type Renderer interface {
	Render(ctx context.Context, url string) (html string, err error)
}

// Fetcher fetches pages and raw documents over HTTP. A snapshot cache backs
// the cache/fresh mode switch; collectors are built per request so no state
// leaks between fetches.
type Fetcher struct {
	cfg      Config
	cache    *gocache.Cache
	limiter  *ratelimit.Limiter
	renderer Renderer
	logger   *zap.Logger
}

// New builds a Fetcher. limiter and renderer may be nil.
func New(cfg Config, limiter *ratelimit.Limiter, renderer Renderer, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		cfg:      cfg,
		cache:    gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		limiter:  limiter,
		renderer: renderer,
		logger:   logger,
	}
}

// Fetch retrieves a page and builds its textual representations. Unless
// bypassCache is set, a previously built snapshot within the TTL is reused.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, bypassCache bool) (page.Snapshot, error) {
	if !bypassCache {
		if cached, ok := f.cache.Get(rawURL); ok {
			snap := cached.(page.Snapshot)
			f.logger.Debug("Snapshot cache hit", zap.String("url", rawURL))
			return snap, nil
		}
	}

	start := time.Now()
	status, body, err := f.retrieve(ctx, rawURL)
	if err != nil {
		return page.Snapshot{Elapsed: time.Since(start)}, err
	}

	snap := page.Build(rawURL, status, body)
	snap.Elapsed = time.Since(start)
	f.cache.Set(rawURL, snap, gocache.DefaultExpiration)
	return snap, nil
}

// Get retrieves a raw document. Non-2xx statuses come back as data, not
// errors, so callers can treat "not found" as an empty source.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (int, []byte, error) {
	status, body, err := f.get(ctx, rawURL)
	if err != nil {
		return 0, nil, err
	}
	return status, body, nil
}

// retrieve runs the renderer when configured, falling back to plain HTTP on
// render failure.
func (f *Fetcher) retrieve(ctx context.Context, rawURL string) (int, []byte, error) {
	if f.renderer != nil {
		html, err := f.renderer.Render(ctx, rawURL)
		if err == nil {
			return http.StatusOK, []byte(html), nil
		}
		f.logger.Warn("Render failed; falling back to HTTP fetch",
			zap.String("url", rawURL), zap.Error(err))
	}
	status, body, err := f.get(ctx, rawURL)
	if err != nil {
		return 0, nil, err
	}
	if status >= http.StatusBadRequest {
		return status, body, fmt.Errorf("fetch %s: unexpected status %d", rawURL, status)
	}
	return status, body, nil
}

// get performs one HTTP GET through a fresh collector.
func (f *Fetcher) get(ctx context.Context, rawURL string) (int, []byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return 0, nil, err
		}
	}

	collector := f.newCollector()

	var (
		status int
		body   []byte
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		// colly reports HTTP error statuses through OnError; keep the
		// response so callers see the status instead of a transport error.
		if r != nil && r.StatusCode > 0 {
			status = r.StatusCode
			body = append([]byte(nil), r.Body...)
		}
	})

	err := f.runCollector(ctx, collector, rawURL)
	if status == 0 {
		if err != nil {
			return 0, nil, err
		}
		return 0, nil, fmt.Errorf("fetch %s: no response received", rawURL)
	}
	// An error status still produced a response; the status code carries it.
	return status, body, nil
}

func (f *Fetcher) newCollector() *colly.Collector {
	collector := colly.NewCollector(colly.Async(false))
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(newHTTPTransport())
	return collector
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, rawURL string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit: %w", err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
