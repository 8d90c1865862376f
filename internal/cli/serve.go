package cli

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/CoderDKai/workhorse/internal/api"
	"github.com/CoderDKai/workhorse/internal/script"
	"github.com/CoderDKai/workhorse/internal/signal"
	"github.com/CoderDKai/workhorse/internal/terminal"
)

// AddServeCommand adds the serve command to the root command.
func AddServeCommand(parent *cobra.Command) {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP/JSON API",
		Long: `Serve every workhorse operation over HTTP/JSON until interrupted.

On SIGINT or SIGTERM in-flight requests are given time to finish and every
terminal session is closed before exiting.

Examples:
  workhorse serve
  workhorse serve --listen 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default from config)")

	parent.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, listen string) error {
	h := signal.NewHandler(cmd.Context())
	defer h.Stop()
	ctx := h.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	h.OnShutdown(a.Close)

	cfg := a.cfg.Server
	if listen != "" {
		cfg.Listen = listen
	}

	terminals := terminal.NewManager(a.cfg.Terminal)
	h.OnShutdown(func() {
		//nolint:contextcheck // The serving context is already canceled here
		if err := terminals.Shutdown(context.Background()); err != nil {
			logger := GetLogger()
			logger.Warn().Err(err).Msg("failed to close terminal sessions")
		}
	})

	logger := GetLogger()
	logger.Info().Str("listen", cfg.Listen).Msg("starting API server")

	srv := api.New(cfg, api.Services{
		Repositories: a.repos,
		Workspaces:   a.workspaces,
		Scripts:      script.NewEngine(a.cfg.Script),
		Terminals:    terminals,
	})
	if err := srv.Start(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}

	logger = GetLogger()
	logger.Info().Msg("API server stopped")
	return nil
}
