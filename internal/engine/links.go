package engine

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractLinks returns the absolute, in-domain http(s) links found in raw
// markup, resolved against base, deduplicated in first-seen order. Fragments
// and a single trailing slash are stripped. maxLinks caps the result when
// positive. Unparseable hrefs are skipped.
func ExtractLinks(rawHTML, base string, allowed AllowedDomains, maxLinks int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		resolved := resolveLink(baseURL, href)
		if resolved == "" || !allowed.Allows(resolved) {
			return true
		}
		if _, dup := seen[resolved]; dup {
			return true
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
		return maxLinks <= 0 || len(links) < maxLinks
	})
	return links
}

// resolveLink turns one href into a cleaned absolute URL, or "" when the
// reference is unusable.
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return strings.TrimSuffix(abs.String(), "/")
}
