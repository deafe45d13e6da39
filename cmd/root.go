// Package cmd defines and implements the CLI commands for the webscout
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ckolb-dev/webscout/internal/config"
	"github.com/ckolb-dev/webscout/internal/engine"
	collyfetcher "github.com/ckolb-dev/webscout/internal/fetcher/colly"
	"github.com/ckolb-dev/webscout/internal/fetcher/headless"
	"github.com/ckolb-dev/webscout/internal/logging"
	"github.com/ckolb-dev/webscout/internal/metrics"
	"github.com/ckolb-dev/webscout/internal/ratelimit"
	"github.com/ckolb-dev/webscout/internal/sitemap"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webscout",
		Short: "Discover and retrieve site content for answer engines.",
		Long: `webscout builds a content manifest for a set of seed domains using the
cheapest authoritative source available (llms.txt, sitemaps, or the pages
themselves) and fetches selected pages with bounded concurrency, producing
text reports for a downstream content-answering process.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/webscout, $HOME/.webscout)")
	cmd.AddCommand(newDiscoverCmd(), newCrawlCmd(), newServeCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initRuntime loads configuration and builds the logger shared by all
// commands.
func initRuntime() (config.Config, *zap.Logger, error) {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/webscout/")
		v.AddConfigPath("$HOME/.webscout")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config.Config{}, nil, fmt.Errorf("read config: %w", err)
		}
		// Defaults and environment variables are enough.
	}

	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.DevelopmentLog)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// buildEngine wires the fetch stack and constructs an Engine scoped to the
// given seeds. The returned closer releases renderer resources.
func buildEngine(cfg config.Config, seeds []string, maxLinks int, logger *zap.Logger) (*engine.Engine, func(), error) {
	metrics.Init()

	limiter := ratelimit.New(ratelimit.Config{DefaultRPS: cfg.PerDomainRPS})

	var renderer collyfetcher.Renderer
	closer := func() {}
	if cfg.RenderEnabled {
		var expand headless.ExpandStrategy
		if cfg.RenderExpandStrategy == "loadmore" {
			expand = headless.LoadMoreExpand{}
		}
		r, err := headless.New(headless.Config{
			UserAgent:   cfg.UserAgent,
			Timeout:     cfg.RenderTimeout,
			MaxParallel: cfg.RenderMaxConcurrency,
		}, expand, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init renderer: %w", err)
		}
		renderer = r
		closer = r.Close
	}

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		CacheTTL:  cfg.CacheTTL,
	}, limiter, renderer, logger)

	resolver := sitemap.New(fetcher, cfg.SitemapMaxDepth, cfg.SitemapConcurrency, logger)

	eng := engine.New(engine.Config{
		PageConcurrency:    cfg.PageConcurrency,
		SitemapConcurrency: cfg.SitemapConcurrency,
		PDFConcurrency:     cfg.PDFConcurrency,
		MaxLinksPerPage:    maxLinks,
		SitemapDisplayCap:  cfg.SitemapDisplayCap,
	}, seeds, fetcher, resolver, logger)

	return eng, closer, nil
}
