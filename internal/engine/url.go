package engine

import (
	"net/url"
	"strings"
)

// NormalizeURL coerces loosely written URLs into fetchable ones: trims
// whitespace, rewrites protocol-relative references to https, and prefixes
// bare host/path strings with https. It does not validate reachability.
// The second return is false for empty input.
func NormalizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw, true
	}
	if !strings.HasPrefix(raw, "http://") &&
		!strings.HasPrefix(raw, "https://") &&
		!strings.HasPrefix(raw, "file://") {
		return "https://" + raw, true
	}
	return raw, true
}

// AllowedDomains is the set of hostnames a crawl may touch, derived from the
// seed URLs. An empty set permits all domains.
type AllowedDomains struct {
	hosts []string
}

// DeriveAllowedDomains collects the hostnames of the valid seed URLs,
// insertion-order unique and lowercased. Malformed seeds are skipped.
func DeriveAllowedDomains(seedURLs []string) AllowedDomains {
	var hosts []string
	seen := make(map[string]struct{})
	for _, seed := range seedURLs {
		normalized, ok := NormalizeURL(seed)
		if !ok {
			continue
		}
		u, err := url.Parse(normalized)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if host == "" {
			continue
		}
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		hosts = append(hosts, host)
	}
	return AllowedDomains{hosts: hosts}
}

// Allows reports whether the URL's hostname is one of the allowed hosts or a
// subdomain of one. Malformed URLs are disallowed. An empty set allows
// everything.
func (a AllowedDomains) Allows(rawURL string) bool {
	if len(a.hosts) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, allowed := range a.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// Hosts returns the allowed hostnames in insertion order.
func (a AllowedDomains) Hosts() []string {
	return a.hosts
}

// rootOf reduces a URL to its scheme://host origin, used to probe well-known
// manifest locations. Falls back to the input when it cannot be parsed.
func rootOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}

// hostOf returns the lowercased hostname of a URL, or the input when it
// cannot be parsed.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}
