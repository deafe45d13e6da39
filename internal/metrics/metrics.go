// Package metrics exposes Prometheus collectors for the discovery and
// retrieval engine.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal     *prometheus.CounterVec
	fetchDurationSeconds  *prometheus.HistogramVec
	discoverySourcesTotal *prometheus.CounterVec
	sitemapDocumentsTotal prometheus.Counter
	linksExtractedTotal   prometheus.Counter

	once sync.Once
)

// Init registers the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webscout_pages_fetched_total",
				Help: "Total pages fetched, labeled by HTTP status and outcome.",
			},
			[]string{"status", "outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webscout_fetch_duration_seconds",
				Help:    "Duration of individual page fetches.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		)

		discoverySourcesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webscout_discovery_sources_total",
				Help: "Manifest sources produced by discovery, labeled by kind.",
			},
			[]string{"kind"},
		)

		sitemapDocumentsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webscout_sitemap_documents_total",
				Help: "Sitemap documents fetched and parsed.",
			},
		)

		linksExtractedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webscout_links_extracted_total",
				Help: "In-domain links extracted from crawled pages.",
			},
		)
	})
}

// ObserveFetch records one page fetch.
func ObserveFetch(statusCode int, err error, elapsed time.Duration) {
	if pagesFetchedTotal == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	pagesFetchedTotal.WithLabelValues(strconv.Itoa(statusCode), outcome).Inc()
	fetchDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// CountDiscoverySource records a manifest source by kind.
func CountDiscoverySource(kind string) {
	if discoverySourcesTotal == nil {
		return
	}
	discoverySourcesTotal.WithLabelValues(kind).Inc()
}

// CountSitemapDocument records one fetched sitemap document.
func CountSitemapDocument() {
	if sitemapDocumentsTotal == nil {
		return
	}
	sitemapDocumentsTotal.Inc()
}

// CountLinks records extracted links.
func CountLinks(n int) {
	if linksExtractedTotal == nil {
		return
	}
	linksExtractedTotal.Add(float64(n))
}

// Handler returns the HTTP handler that serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
