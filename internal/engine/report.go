package engine

import (
	"fmt"
	"strings"
)

// noValidURLsReport is returned when every input URL was dropped during
// validation. The downstream agent treats an empty string as an error, so
// even this case yields an explicit report.
const noValidURLsReport = "No valid URLs provided or all URLs outside allowed domains."

// FormatDiscovery renders a DiscoveryResult into the text report consumed by
// the calling agent. sitemapDisplayCap bounds how many sitemap URLs are
// listed across all domains; the total count is always reported in full.
func FormatDiscovery(result DiscoveryResult, seedURLs []string, sitemapDisplayCap int) string {
	var b strings.Builder
	b.WriteString("=== SITE STRUCTURE DISCOVERY ===\n")

	domains := make([]string, 0, len(seedURLs))
	for _, seed := range seedURLs {
		domains = append(domains, hostOf(seed))
	}
	fmt.Fprintf(&b, "Discovered from %d seed URLs: %s\n\n", len(seedURLs), strings.Join(domains, ", "))

	totalURLs := 0

	if len(result.Manifests) > 0 {
		fmt.Fprintf(&b, "--- llms.txt manifests (%d found) ---\n", len(result.Manifests))
		for _, src := range result.Manifests {
			totalURLs += len(src.URLs)
			fmt.Fprintf(&b, "[%s] manifest (%d chars, %d URLs):\n", src.Domain, len(src.Content), len(src.URLs))
			b.WriteString(src.Content)
			if !strings.HasSuffix(src.Content, "\n") {
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	if len(result.Sitemaps) > 0 {
		sitemapTotal := 0
		for _, src := range result.Sitemaps {
			sitemapTotal += len(src.URLs)
		}
		totalURLs += sitemapTotal
		fmt.Fprintf(&b, "--- Sitemap URLs (%d found) ---\n", sitemapTotal)
		shown := 0
		for _, src := range result.Sitemaps {
			for i, u := range src.URLs {
				if sitemapDisplayCap > 0 && shown >= sitemapDisplayCap {
					break
				}
				fmt.Fprintf(&b, "[%s] %d. %s\n", src.Domain, i+1, u)
				shown++
			}
		}
		if sitemapDisplayCap > 0 && sitemapTotal > sitemapDisplayCap {
			fmt.Fprintf(&b, "... and %d more URLs not shown\n", sitemapTotal-sitemapDisplayCap)
		}
		b.WriteString("\n")
	}

	if len(result.BasePages) > 0 {
		fmt.Fprintf(&b, "--- Base page content (%d pages) ---\n", len(result.BasePages))
		for _, src := range result.BasePages {
			totalURLs += len(src.URLs)
			fmt.Fprintf(&b, "[%s] page content (%d chars):\n", src.Domain, len(src.Content))
			b.WriteString(src.Content)
			b.WriteString("\n\n")
		}
	}

	b.WriteString("=== DISCOVERY SUMMARY ===\n")
	fmt.Fprintf(&b, "Total URLs discovered: %d\n", totalURLs)
	b.WriteString("Use the crawl operation next to fetch the URLs relevant to the question.\n")

	if totalURLs == 0 && len(result.Manifests) == 0 && len(result.BasePages) == 0 {
		b.WriteString("\nNo content discovered from any source (llms.txt, sitemaps, or base pages).\n")
		b.WriteString("The seed URLs can still be crawled directly.\n")
	}

	return b.String()
}

// FormatCrawl renders crawl results: per-URL content blocks, a summary, and
// the discovered-links sections. Content is never truncated.
func FormatCrawl(results []FetchResult) string {
	if len(results) == 0 {
		return "No results to display."
	}

	var b strings.Builder
	b.WriteString("=== CRAWLED CONTENT ===\n\n")

	totalChars := 0
	for _, r := range results {
		totalChars += len(r.Content)
		fmt.Fprintf(&b, "URL: %s\n", r.URL)
		fmt.Fprintf(&b, "Content Length: %d characters\n", len(r.Content))
		fmt.Fprintf(&b, "Content: %s\n\n", r.Content)
	}

	b.WriteString("=== CRAWL SUMMARY ===\n")
	fmt.Fprintf(&b, "Total URLs crawled: %d\n", len(results))
	fmt.Fprintf(&b, "Total content extracted: %d characters\n\n", totalChars)

	b.WriteString("=== DISCOVERED LINKS ===\n\n")
	unique := make(map[string]struct{})
	for _, r := range results {
		if len(r.Links) == 0 {
			continue
		}
		fmt.Fprintf(&b, "From %s (%d links found):\n", r.URL, len(r.Links))
		for _, link := range r.Links {
			unique[link] = struct{}{}
			fmt.Fprintf(&b, "- %s\n", link)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total unique links discovered: %d\n", len(unique))

	return b.String()
}
