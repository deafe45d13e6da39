package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, 5, cfg.PageConcurrency)
	require.Equal(t, 3, cfg.SitemapConcurrency)
	require.Equal(t, 3, cfg.PDFConcurrency)
	require.Equal(t, 3, cfg.SitemapMaxDepth)
	require.Equal(t, 0, cfg.MaxLinksPerPage)
	require.Equal(t, 200, cfg.SitemapDisplayCap)
	require.Equal(t, 10*time.Second, cfg.FetchTimeout)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.Equal(t, 2.0, cfg.PerDomainRPS)
	require.False(t, cfg.RenderEnabled)
	require.Equal(t, "none", cfg.RenderExpandStrategy)
	require.Equal(t, ":8080", cfg.ServerAddr)
	require.NotEmpty(t, cfg.UserAgent)
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	v := viper.New()
	SetDefaults(v)
	v.Set("engine.seeds", []string{"https://site.com"})
	v.Set("engine.page_concurrency", 10)
	v.Set("fetch.timeout", "30s")
	v.Set("render.enabled", true)
	v.Set("render.expand_strategy", "loadmore")

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, []string{"https://site.com"}, cfg.Seeds)
	require.Equal(t, 10, cfg.PageConcurrency)
	require.Equal(t, 30*time.Second, cfg.FetchTimeout)
	require.True(t, cfg.RenderEnabled)
	require.Equal(t, "loadmore", cfg.RenderExpandStrategy)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		v := viper.New()
		SetDefaults(v)
		cfg, err := Load(v)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero page concurrency",
			mutate:  func(c *Config) { c.PageConcurrency = 0 },
			wantErr: "page_concurrency",
		},
		{
			name:    "negative sitemap depth",
			mutate:  func(c *Config) { c.SitemapMaxDepth = -1 },
			wantErr: "sitemap_max_depth",
		},
		{
			name:    "empty user agent",
			mutate:  func(c *Config) { c.UserAgent = "" },
			wantErr: "user_agent",
		},
		{
			name:    "zero fetch timeout",
			mutate:  func(c *Config) { c.FetchTimeout = 0 },
			wantErr: "timeout",
		},
		{
			name:    "unknown expand strategy",
			mutate:  func(c *Config) { c.RenderExpandStrategy = "scroll" },
			wantErr: "expand_strategy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
