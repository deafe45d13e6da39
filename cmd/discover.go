package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDiscoverCmd creates the 'discover' subcommand. It builds content
// manifests for the given seed URLs and prints the discovery report.
func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover URL...",
		Short: "Discover the content structure of one or more seed domains",
		Long: `Builds a content manifest for every seed URL, trying the cheapest
authoritative source first: an llms.txt manifest, then the sitemap tree,
and finally the seed page itself. Prints a text report listing what was
found, tagged by originating domain.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runDiscoverCommand,
	}
	return cmd
}

func runDiscoverCommand(cmd *cobra.Command, args []string) error {
	cfg, logger, err := initRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eng, closeEngine, err := buildEngine(cfg, args, cfg.MaxLinksPerPage, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	fmt.Fprintln(cmd.OutOrStdout(), eng.Discover(cmd.Context(), args))
	return nil
}
