package cmd

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ckolb-dev/webscout/internal/api"
)

// newServeCmd creates the 'serve' subcommand, exposing discover and crawl
// over HTTP for the agent harness.
func newServeCmd() *cobra.Command {
	var seeds []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve discover and crawl over HTTP",
		Long: `Starts an HTTP server exposing POST /v1/discover and POST /v1/crawl.
The allowed-domain scope for the whole server session is fixed by --seeds;
without it, all domains are permitted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeCommand(cmd, seeds)
		},
	}
	cmd.Flags().StringSliceVar(&seeds, "seeds", nil, "seed URLs defining the allowed-domain scope")
	return cmd
}

func runServeCommand(cmd *cobra.Command, seeds []string) error {
	cfg, logger, err := initRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eng, closeEngine, err := buildEngine(cfg, seeds, cfg.MaxLinksPerPage, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(eng, logger)
	if err := server.Serve(ctx, cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Server stopped", zap.String("addr", cfg.ServerAddr))
	return nil
}
