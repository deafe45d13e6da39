package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ckolb-dev/webscout/internal/engine"
	"github.com/ckolb-dev/webscout/internal/page"
)

// stubFetcher serves canned pages; anything else fails.
type stubFetcher struct {
	pages map[string]page.Snapshot
}

func (f *stubFetcher) Fetch(_ context.Context, url string, _ bool) (page.Snapshot, error) {
	if snap, ok := f.pages[url]; ok {
		return snap, nil
	}
	return page.Snapshot{}, context.DeadlineExceeded
}

func (f *stubFetcher) Get(context.Context, string) (int, []byte, error) {
	return http.StatusNotFound, nil, nil
}

type stubResolver struct {
	trees map[string][]string
}

func (r *stubResolver) Resolve(_ context.Context, sitemapURL string) []string {
	return r.trees[sitemapURL]
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fetcher := &stubFetcher{pages: map[string]page.Snapshot{
		"https://site.com/page": {
			URL:        "https://site.com/page",
			StatusCode: 200,
			ReaderText: strings.Repeat("useful content ", 10),
		},
	}}
	resolver := &stubResolver{trees: map[string][]string{
		"https://site.com/sitemap.xml": {"https://site.com/page"},
	}}
	eng := engine.New(engine.Config{}, []string{"https://site.com"}, fetcher, resolver, zap.NewNop())
	return NewServer(eng, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDiscoverEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	body := strings.NewReader(`{"urls": ["https://site.com"]}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/discover", body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	require.Contains(t, rec.Body.String(), "=== SITE STRUCTURE DISCOVERY ===")
	require.Contains(t, rec.Body.String(), "https://site.com/page")
}

func TestCrawlEndpoint_SingleURLCoercion(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	body := strings.NewReader(`{"url": "https://site.com/page"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/crawl", body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Total URLs crawled: 1")
	require.Contains(t, rec.Body.String(), "useful content")
}

func TestCrawlEndpoint_ListWins(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	body := strings.NewReader(`{"url": "https://site.com/ignored", "urls": ["https://site.com/page"]}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/crawl", body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "ignored")
}

func TestBadJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/crawl", strings.NewReader("{not json")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"invalid JSON"}`, rec.Body.String())
}

func TestEmptyURLList(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/discover", strings.NewReader(`{"urls": []}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"at least one URL required"}`, rec.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	// A caller-provided ID is echoed back untouched.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}
