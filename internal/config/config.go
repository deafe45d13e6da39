// Package config initializes application configuration through Viper.
// Settings come from a config file, environment variables (WEBSCOUT_ prefix),
// and CLI flags, and are materialized into a typed Config so the engine and
// its collaborators never touch Viper directly.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences discovery and crawling.
type Config struct {
	Seeds []string

	PageConcurrency    int
	SitemapConcurrency int
	PDFConcurrency     int
	SitemapMaxDepth    int
	MaxLinksPerPage    int
	SitemapDisplayCap  int

	UserAgent    string
	FetchTimeout time.Duration
	CacheTTL     time.Duration
	PerDomainRPS float64

	RenderEnabled        bool
	RenderTimeout        time.Duration
	RenderMaxConcurrency int
	RenderExpandStrategy string

	ServerAddr     string
	DevelopmentLog bool
}

// SetDefaults registers defaults on the given Viper instance and enables
// environment variable overrides.
func SetDefaults(v *viper.Viper) {
	const defaultUA = "webscout/1.0 (+https://github.com/ckolb-dev/webscout)"

	v.SetDefault("engine.page_concurrency", 5)
	v.SetDefault("engine.sitemap_concurrency", 3)
	v.SetDefault("engine.pdf_concurrency", 3)
	v.SetDefault("engine.sitemap_max_depth", 3)
	v.SetDefault("engine.max_links_per_page", 0)
	v.SetDefault("engine.sitemap_display_cap", 200)

	v.SetDefault("fetch.user_agent", defaultUA)
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.cache_ttl", "5m")
	v.SetDefault("fetch.per_domain_rps", 2.0)

	v.SetDefault("render.enabled", false)
	v.SetDefault("render.timeout", "15s")
	v.SetDefault("render.max_concurrency", 2)
	v.SetDefault("render.expand_strategy", "none")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.development", false)

	v.SetEnvPrefix("WEBSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load constructs a Config by reading from Viper.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Seeds:                v.GetStringSlice("engine.seeds"),
		PageConcurrency:      v.GetInt("engine.page_concurrency"),
		SitemapConcurrency:   v.GetInt("engine.sitemap_concurrency"),
		PDFConcurrency:       v.GetInt("engine.pdf_concurrency"),
		SitemapMaxDepth:      v.GetInt("engine.sitemap_max_depth"),
		MaxLinksPerPage:      v.GetInt("engine.max_links_per_page"),
		SitemapDisplayCap:    v.GetInt("engine.sitemap_display_cap"),
		UserAgent:            v.GetString("fetch.user_agent"),
		FetchTimeout:         v.GetDuration("fetch.timeout"),
		CacheTTL:             v.GetDuration("fetch.cache_ttl"),
		PerDomainRPS:         v.GetFloat64("fetch.per_domain_rps"),
		RenderEnabled:        v.GetBool("render.enabled"),
		RenderTimeout:        v.GetDuration("render.timeout"),
		RenderMaxConcurrency: v.GetInt("render.max_concurrency"),
		RenderExpandStrategy: v.GetString("render.expand_strategy"),
		ServerAddr:           v.GetString("server.addr"),
		DevelopmentLog:       v.GetBool("log.development"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.PageConcurrency <= 0 {
		return fmt.Errorf("engine.page_concurrency must be > 0")
	}
	if c.SitemapConcurrency <= 0 {
		return fmt.Errorf("engine.sitemap_concurrency must be > 0")
	}
	if c.PDFConcurrency <= 0 {
		return fmt.Errorf("engine.pdf_concurrency must be > 0")
	}
	if c.SitemapMaxDepth < 0 {
		return fmt.Errorf("engine.sitemap_max_depth must be >= 0")
	}
	if c.MaxLinksPerPage < 0 {
		return fmt.Errorf("engine.max_links_per_page must be >= 0")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("fetch.user_agent must be set")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	switch c.RenderExpandStrategy {
	case "none", "loadmore":
	default:
		return fmt.Errorf("render.expand_strategy must be %q or %q", "none", "loadmore")
	}
	return nil
}
