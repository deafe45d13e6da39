package engine

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ckolb-dev/webscout/internal/metrics"
)

// Well-known manifest locations probed per seed domain, cheapest first.
const llmsTxtPath = "/llms.txt"

var sitemapPaths = []string{"/sitemap.xml", "/sitemap_index.xml", "/sitemap/sitemap.xml"}

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// seedSources is the discovery outcome for one seed URL.
type seedSources struct {
	manifest *ManifestSource
	sitemap  *ManifestSource
	basePage *ManifestSource
}

// discoverAll runs discovery for every seed concurrently and merges the
// outcomes into per-kind lists with seed order preserved.
func (e *Engine) discoverAll(ctx context.Context, seeds []string) DiscoveryResult {
	collected := make([]seedSources, len(seeds))
	var wg sync.WaitGroup
	for i, seed := range seeds {
		wg.Add(1)
		go func(slot int, seedURL string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("Seed discovery panicked", zap.String("seed", seedURL), zap.Any("panic", r))
				}
			}()
			collected[slot] = e.discoverSeed(ctx, seedURL)
		}(i, seed)
	}
	wg.Wait()

	var result DiscoveryResult
	for _, src := range collected {
		if src.manifest != nil {
			metrics.CountDiscoverySource(string(ManifestLLMSText))
			result.Manifests = append(result.Manifests, *src.manifest)
		}
		if src.sitemap != nil {
			metrics.CountDiscoverySource(string(ManifestSitemap))
			result.Sitemaps = append(result.Sitemaps, *src.sitemap)
		}
		if src.basePage != nil {
			metrics.CountDiscoverySource(string(ManifestBasePage))
			result.BasePages = append(result.BasePages, *src.basePage)
		}
	}
	return result
}

// discoverSeed produces the richest manifest available for one seed using
// the cheapest sufficient source: the llms.txt manifest first, then the
// sitemap tree, and only when both come up empty the seed page itself.
// Every source failure degrades to the next source, never to an error.
func (e *Engine) discoverSeed(ctx context.Context, seedURL string) seedSources {
	root := rootOf(seedURL)
	domain := hostOf(seedURL)
	e.logger.Info("Discovering content sources", zap.String("root", root))

	var sources seedSources

	if manifest := e.fetchLLMSText(ctx, root, domain); manifest != nil {
		sources.manifest = manifest
	}

	if pageURLs := e.resolveSeedSitemaps(ctx, root); len(pageURLs) > 0 {
		sources.sitemap = &ManifestSource{
			Kind:   ManifestSitemap,
			Domain: domain,
			URLs:   pageURLs,
		}
	}

	if sources.manifest == nil && sources.sitemap == nil {
		sources.basePage = e.fetchBasePage(ctx, seedURL, domain)
	}
	return sources
}

// fetchLLMSText probes {root}/llms.txt. A reachable, non-blank file becomes
// the manifest: its full text is the content, and any URLs it lists are
// parsed out for navigation.
func (e *Engine) fetchLLMSText(ctx context.Context, root, domain string) *ManifestSource {
	manifestURL := root + llmsTxtPath
	status, body, err := e.fetcher.Get(ctx, manifestURL)
	if err != nil {
		e.logger.Debug("llms.txt fetch failed", zap.String("url", manifestURL), zap.Error(err))
		return nil
	}
	if status != http.StatusOK || strings.TrimSpace(string(body)) == "" {
		return nil
	}
	content := string(body)
	urls := e.parseLLMSText(content, manifestURL)
	e.logger.Info("Found llms.txt manifest",
		zap.String("domain", domain),
		zap.Int("chars", len(content)),
		zap.Int("urls", len(urls)),
	)
	return &ManifestSource{
		Kind:    ManifestLLMSText,
		Domain:  domain,
		Content: content,
		URLs:    urls,
	}
}

// parseLLMSText extracts content URLs from an llms.txt manifest. Lines may
// carry Markdown links or bare URLs; comment lines start with '#'. Relative
// references resolve against the manifest URL. Only allowed-domain URLs
// survive.
func (e *Engine) parseLLMSText(content, manifestURL string) []string {
	base, err := url.Parse(manifestURL)
	if err != nil {
		return nil
	}

	var urls []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		candidate := ""
		if m := markdownLink.FindStringSubmatch(line); m != nil {
			candidate = m[2]
		} else {
			candidate = strings.Fields(line)[0]
		}
		if !strings.HasPrefix(candidate, "http") && !strings.HasPrefix(candidate, "/") {
			continue
		}

		ref, err := url.Parse(candidate)
		if err != nil {
			continue
		}
		full := base.ResolveReference(ref).String()
		if !e.allowed.Allows(full) {
			continue
		}
		normalized, ok := NormalizeURL(full)
		if !ok {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		urls = append(urls, normalized)
	}
	return urls
}

// resolveSeedSitemaps tries the well-known sitemap locations in order and
// returns the page URLs of the first location that yields any.
func (e *Engine) resolveSeedSitemaps(ctx context.Context, root string) []string {
	if e.sitemaps == nil {
		return nil
	}
	for _, path := range sitemapPaths {
		if pageURLs := e.sitemaps.Resolve(ctx, root+path); len(pageURLs) > 0 {
			e.logger.Info("Resolved sitemap tree",
				zap.String("sitemap", root+path),
				zap.Int("urls", len(pageURLs)),
			)
			return pageURLs
		}
	}
	return nil
}

// fetchBasePage crawls the seed URL itself as an ordinary page, the manifest
// of last resort. Discovery tolerates a cached snapshot since site structure
// changes infrequently.
func (e *Engine) fetchBasePage(ctx context.Context, seedURL, domain string) *ManifestSource {
	e.logger.Info("No manifest or sitemap found; crawling seed page", zap.String("url", seedURL))
	results := e.fetchBatch(ctx, []string{seedURL}, batchOptions{
		budget:   1,
		maxLinks: e.cfg.MaxLinksPerPage,
	})
	if len(results) == 0 || results[0].Err != nil {
		if len(results) > 0 {
			e.logger.Warn("Seed page crawl failed", zap.String("url", seedURL), zap.Error(results[0].Err))
		}
		return nil
	}
	return &ManifestSource{
		Kind:    ManifestBasePage,
		Domain:  domain,
		Content: results[0].Content,
		URLs:    results[0].Links,
	}
}
