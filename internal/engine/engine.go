package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Config carries the engine's tunables. Zero values fall back to the
// defaults below.
type Config struct {
	PageConcurrency    int
	SitemapConcurrency int
	PDFConcurrency     int
	MaxLinksPerPage    int
	SitemapDisplayCap  int
}

// Defaults applied by New for unset Config fields.
const (
	defaultPageConcurrency    = 5
	defaultSitemapConcurrency = 3
	defaultPDFConcurrency     = 3
	defaultSitemapDisplayCap  = 200
)

// Engine is the content discovery and retrieval engine. The seed set and the
// allowed-domain set derived from it are fixed at construction; one Engine
// serves one conversation or session.
type Engine struct {
	cfg      Config
	seeds    []string
	allowed  AllowedDomains
	fetcher  Fetcher
	sitemaps SitemapResolver
	logger   *zap.Logger
}

// New constructs an Engine scoped to the given seed URLs. Invalid seeds are
// dropped; an empty seed set leaves all domains permitted.
func New(cfg Config, seedURLs []string, fetcher Fetcher, sitemaps SitemapResolver, logger *zap.Logger) *Engine {
	if cfg.PageConcurrency <= 0 {
		cfg.PageConcurrency = defaultPageConcurrency
	}
	if cfg.SitemapConcurrency <= 0 {
		cfg.SitemapConcurrency = defaultSitemapConcurrency
	}
	if cfg.PDFConcurrency <= 0 {
		cfg.PDFConcurrency = defaultPDFConcurrency
	}
	if cfg.SitemapDisplayCap <= 0 {
		cfg.SitemapDisplayCap = defaultSitemapDisplayCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var seeds []string
	for _, seed := range seedURLs {
		normalized, ok := NormalizeURL(seed)
		if !ok {
			logger.Warn("Dropping empty seed URL")
			continue
		}
		seeds = append(seeds, normalized)
	}

	return &Engine{
		cfg:      cfg,
		seeds:    seeds,
		allowed:  DeriveAllowedDomains(seeds),
		fetcher:  fetcher,
		sitemaps: sitemaps,
		logger:   logger,
	}
}

// AllowedDomains exposes the domain set derived from the seeds.
func (e *Engine) AllowedDomains() AllowedDomains {
	return e.allowed
}

// Discover builds a content manifest for every valid seed-domain URL and
// renders the result as a text report. It never returns an error; internal
// failures surface as an error-marker report string.
func (e *Engine) Discover(ctx context.Context, urls []string) (report string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Discovery panicked", zap.Any("panic", r))
			report = fmt.Sprintf("ERROR: discovery failed: %v", r)
		}
	}()

	valid := e.validateURLs(urls)
	if len(valid) == 0 {
		return noValidURLsReport
	}

	result := e.discoverAll(ctx, valid)
	return FormatDiscovery(result, valid, e.cfg.SitemapDisplayCap)
}

// Crawl fetches every valid URL fresh (cache bypassed) and renders the
// extracted content and links as a text report. Like Discover, it never
// returns an error.
func (e *Engine) Crawl(ctx context.Context, urls []string) (report string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Crawl panicked", zap.Any("panic", r))
			report = fmt.Sprintf("ERROR: crawl failed: %v", r)
		}
	}()

	valid := e.validateURLs(urls)
	if len(valid) == 0 {
		return noValidURLsReport
	}

	e.logger.Info("Crawling selected URLs", zap.Int("count", len(valid)))
	results := e.crawlPartitioned(ctx, valid)
	return FormatCrawl(results)
}

// crawlPartitioned batches PDF URLs under their own concurrency budget and
// merges results back into input order.
func (e *Engine) crawlPartitioned(ctx context.Context, urls []string) []FetchResult {
	var pageURLs, pdfURLs []string
	var pageIdx, pdfIdx []int
	for i, u := range urls {
		if isPDF(u) {
			pdfURLs = append(pdfURLs, u)
			pdfIdx = append(pdfIdx, i)
			continue
		}
		pageURLs = append(pageURLs, u)
		pageIdx = append(pageIdx, i)
	}

	results := make([]FetchResult, len(urls))
	pageResults := e.fetchBatch(ctx, pageURLs, batchOptions{
		budget:      e.cfg.PageConcurrency,
		bypassCache: true,
		maxLinks:    e.cfg.MaxLinksPerPage,
	})
	for i, r := range pageResults {
		results[pageIdx[i]] = r
	}
	pdfResults := e.fetchBatch(ctx, pdfURLs, batchOptions{
		budget:      e.cfg.PDFConcurrency,
		bypassCache: true,
		maxLinks:    e.cfg.MaxLinksPerPage,
	})
	for i, r := range pdfResults {
		results[pdfIdx[i]] = r
	}
	return results
}

// validateURLs normalizes the inputs and drops anything malformed or outside
// the allowed domains, logging each drop.
func (e *Engine) validateURLs(urls []string) []string {
	var valid []string
	for _, raw := range urls {
		normalized, ok := NormalizeURL(raw)
		if !ok {
			e.logger.Warn("Dropping empty URL")
			continue
		}
		if !e.allowed.Allows(normalized) {
			e.logger.Warn("Dropping URL outside allowed domains", zap.String("url", normalized))
			continue
		}
		valid = append(valid, normalized)
	}
	return valid
}

func isPDF(rawURL string) bool {
	trimmed := strings.TrimSuffix(rawURL, "/")
	return strings.HasSuffix(strings.ToLower(trimmed), ".pdf")
}
