// Package engine implements the content discovery and retrieval engine:
// domain governance, multi-source manifest discovery, concurrency-bounded
// fetching, content and link extraction, and report formatting.
package engine

import "time"

// ManifestKind identifies which discovery source produced a manifest entry.
type ManifestKind string

// Manifest source kinds in fallback priority order.
const (
	ManifestLLMSText ManifestKind = "llms_txt"
	ManifestSitemap  ManifestKind = "sitemap"
	ManifestBasePage ManifestKind = "base_page"
)

// ManifestSource is one discovery result tagged with the seed domain that
// produced it, so results from multiple seeds merge without losing
// provenance.
type ManifestSource struct {
	Kind   ManifestKind
	Domain string
	// Content carries the llms.txt text or the extracted base page content.
	Content string
	// URLs carries sitemap page URLs, or URLs parsed out of an llms.txt
	// manifest, in first-seen order.
	URLs []string
}

// DiscoveryResult aggregates manifest sources across all seeds, grouped by
// kind with seed order preserved.
type DiscoveryResult struct {
	Manifests []ManifestSource
	Sitemaps  []ManifestSource
	BasePages []ManifestSource
}

// FetchResult is the per-URL outcome of a crawl batch. One is produced for
// every requested URL, failed or not, so requested and returned items always
// correspond 1:1.
type FetchResult struct {
	URL     string
	Content string
	Links   []string
	Elapsed time.Duration
	Err     error
}
