package engine

import (
	"context"

	"github.com/ckolb-dev/webscout/internal/page"
)

// Fetcher retrieves pages and raw documents over HTTP.
type Fetcher interface {
	// Fetch retrieves a page and builds its textual representations.
	// bypassCache forces a fresh fetch instead of a cached snapshot.
	Fetch(ctx context.Context, url string, bypassCache bool) (page.Snapshot, error)

	// Get retrieves a raw document (manifest file, sitemap). A non-2xx
	// status is reported through the status code, not an error; the error
	// is reserved for transport failures.
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// SitemapResolver resolves a sitemap or sitemap-index URL into the full set
// of page URLs it transitively describes.
type SitemapResolver interface {
	Resolve(ctx context.Context, sitemapURL string) []string
}
