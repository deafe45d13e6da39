package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Release notes</title><style>body { margin: 0; }</style></head>
<body>
<article>
<h1>Release notes</h1>
<p>This release improves sitemap resolution and adds per-domain rate
limiting so that large crawls stay polite to every origin they touch.</p>
</article>
<script>console.log("tracking");</script>
</body>
</html>`

func newArticleServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/article":
			fmt.Fprint(w, articleHTML)
		case "/sitemap.xml":
			fmt.Fprint(w, `<urlset><url><loc>https://site.com/a</loc></url></urlset>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_BuildsSnapshot(t *testing.T) {
	t.Parallel()

	srv := newArticleServer(t, nil)
	f := New(Config{UserAgent: "webscout-test"}, nil, nil, zap.NewNop())

	snap, err := f.Fetch(context.Background(), srv.URL+"/article", false)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, snap.StatusCode)
	require.Contains(t, snap.RawHTML, "<article>")
	require.Contains(t, snap.CleanText, "per-domain rate limiting")
	require.NotContains(t, snap.CleanText, "tracking")
	require.NotContains(t, snap.CleanText, "margin")
	require.Greater(t, snap.Elapsed, time.Duration(0))
}

func TestFetch_CacheAndBypass(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := newArticleServer(t, &hits)
	f := New(Config{}, nil, nil, zap.NewNop())
	ctx := context.Background()
	url := srv.URL + "/article"

	_, err := f.Fetch(ctx, url, false)
	require.NoError(t, err)
	_, err = f.Fetch(ctx, url, false)
	require.NoError(t, err)
	require.Equal(t, int64(1), hits.Load(), "second cached fetch must not hit the server")

	_, err = f.Fetch(ctx, url, true)
	require.NoError(t, err)
	require.Equal(t, int64(2), hits.Load(), "bypass must refetch")

	// A bypass fetch refreshes the cache for later cached reads.
	_, err = f.Fetch(ctx, url, false)
	require.NoError(t, err)
	require.Equal(t, int64(2), hits.Load())
}

func TestFetch_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := newArticleServer(t, nil)
	f := New(Config{}, nil, nil, zap.NewNop())

	_, err := f.Fetch(context.Background(), srv.URL+"/missing", false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status 404")
}

func TestGet_NotFoundIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := newArticleServer(t, nil)
	f := New(Config{}, nil, nil, zap.NewNop())

	status, body, err := f.Get(context.Background(), srv.URL+"/nope.xml")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, body)
}

func TestGet_ReturnsRawBody(t *testing.T) {
	t.Parallel()

	srv := newArticleServer(t, nil)
	f := New(Config{}, nil, nil, zap.NewNop())

	status, body, err := f.Get(context.Background(), srv.URL+"/sitemap.xml")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(body), "<loc>https://site.com/a</loc>")
}

// stubRenderer returns canned markup, or an error to trigger HTTP fallback.
type stubRenderer struct {
	html string
	err  error
}

func (r *stubRenderer) Render(context.Context, string) (string, error) {
	return r.html, r.err
}

func TestFetch_RendererPreferred(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := newArticleServer(t, &hits)
	rendered := strings.Replace(articleHTML, "Release notes", "Rendered notes", 2)
	f := New(Config{}, nil, &stubRenderer{html: rendered}, zap.NewNop())

	snap, err := f.Fetch(context.Background(), srv.URL+"/article", true)
	require.NoError(t, err)
	require.Contains(t, snap.RawHTML, "Rendered notes")
	require.Equal(t, int64(0), hits.Load(), "renderer success must skip HTTP")
}

func TestFetch_RendererFailureFallsBackToHTTP(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := newArticleServer(t, &hits)
	f := New(Config{}, nil, &stubRenderer{err: errors.New("chrome crashed")}, zap.NewNop())

	snap, err := f.Fetch(context.Background(), srv.URL+"/article", true)
	require.NoError(t, err)
	require.Contains(t, snap.RawHTML, "Release notes")
	require.Equal(t, int64(1), hits.Load())
}

func TestFetch_TransportError(t *testing.T) {
	t.Parallel()

	srv := newArticleServer(t, nil)
	url := srv.URL + "/article"
	srv.Close()

	f := New(Config{Timeout: 2 * time.Second}, nil, nil, zap.NewNop())
	_, err := f.Fetch(context.Background(), url, false)
	require.Error(t, err)
}
