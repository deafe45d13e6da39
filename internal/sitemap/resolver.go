// Package sitemap resolves sitemap and sitemap-index documents into the full
// set of page URLs they transitively describe.
package sitemap

import (
	"context"
	"encoding/xml"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ckolb-dev/webscout/internal/metrics"
)

// Getter fetches a raw document. A non-2xx status is reported through the
// status code; the error covers transport failures only.
type Getter interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// Kind classifies a resolved sitemap document.
type Kind int

// A document holding <url> entries is a leaf; one holding <sitemap> entries
// is an index. A document carrying both counts as an index with pages.
const (
	KindLeaf Kind = iota
	KindIndex
)

// node is the transient shape of one resolved sitemap document.
type node struct {
	url           string
	kind          Kind
	pageURLs      []string
	childSitemaps []string
}

// document tolerates both <urlset> and <sitemapindex> roots, and documents
// mixing the two element shapes.
type document struct {
	URLs     []entry `xml:"url"`
	Sitemaps []entry `xml:"sitemap"`
}

type entry struct {
	Loc string `xml:"loc"`
}

// Resolver recursively resolves sitemap trees with bounded depth and
// bounded fan-out.
type Resolver struct {
	getter      Getter
	logger      *zap.Logger
	maxDepth    int
	concurrency int
}

// New constructs a Resolver. maxDepth bounds recursion into nested indexes;
// concurrency bounds sibling fetches at each level.
func New(getter Getter, maxDepth, concurrency int, logger *zap.Logger) *Resolver {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	if concurrency <= 0 {
		concurrency = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		getter:      getter,
		logger:      logger,
		maxDepth:    maxDepth,
		concurrency: concurrency,
	}
}

// Resolve returns every page URL reachable from the given sitemap URL,
// deduplicated in first-seen order. Fetch and parse failures yield an empty
// result, never an error; recursion past the depth bound is silently
// truncated, which keeps cyclic indexes finite.
func (r *Resolver) Resolve(ctx context.Context, sitemapURL string) []string {
	pages := r.resolve(ctx, sitemapURL, 0)
	return dedupe(pages)
}

func (r *Resolver) resolve(ctx context.Context, sitemapURL string, depth int) []string {
	n, ok := r.fetchNode(ctx, sitemapURL)
	if !ok {
		return nil
	}
	pages := n.pageURLs

	if len(n.childSitemaps) == 0 {
		return pages
	}
	if depth+1 >= r.maxDepth {
		r.logger.Debug("Sitemap depth bound reached; truncating",
			zap.String("sitemap", sitemapURL),
			zap.Int("children", len(n.childSitemaps)),
		)
		return pages
	}

	// Nested sitemaps resolve concurrently; results keep child order so the
	// merged output is deterministic.
	childPages := make([][]string, len(n.childSitemaps))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	for i, child := range n.childSitemaps {
		wg.Add(1)
		go func(slot int, childURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			childPages[slot] = r.resolve(ctx, childURL, depth+1)
		}(i, child)
	}
	wg.Wait()

	for _, cp := range childPages {
		pages = append(pages, cp...)
	}
	return pages
}

// fetchNode fetches and classifies one sitemap document. Any failure --
// transport, non-200, malformed XML -- produces no node.
func (r *Resolver) fetchNode(ctx context.Context, sitemapURL string) (node, bool) {
	status, body, err := r.getter.Get(ctx, sitemapURL)
	if err != nil {
		r.logger.Debug("Sitemap fetch failed", zap.String("url", sitemapURL), zap.Error(err))
		return node{}, false
	}
	if status != http.StatusOK {
		return node{}, false
	}
	metrics.CountSitemapDocument()

	var doc document
	if err := xml.Unmarshal(body, &doc); err != nil {
		r.logger.Debug("Sitemap parse failed", zap.String("url", sitemapURL), zap.Error(err))
		return node{}, false
	}

	n := node{url: sitemapURL, kind: KindLeaf}
	for _, e := range doc.URLs {
		if loc := strings.TrimSpace(e.Loc); loc != "" {
			n.pageURLs = append(n.pageURLs, loc)
		}
	}
	for _, e := range doc.Sitemaps {
		if loc := strings.TrimSpace(e.Loc); loc != "" {
			n.childSitemaps = append(n.childSitemaps, loc)
		}
	}
	if len(n.childSitemaps) > 0 {
		n.kind = KindIndex
	}
	return n, true
}

func dedupe(urls []string) []string {
	if len(urls) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
