package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplineage/internal/lineage"
	"github.com/leapstack-labs/leaplineage/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the lineage API server",
		Long: `Start the HTTP API server.

The server exposes the lineage graph as a JSON API: registration of
datasets, jobs, and runs, lineage queries, impact analysis, metrics,
and graph export. It runs until interrupted.`,
		Example: `  # Serve the in-memory backend with demo data
  leaplineage serve --demo

  # Serve a persistent lineage store
  leaplineage serve --backend sqlite --state-path lineage.db --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if cmdCtx.Cfg.Server.Demo {
				if err := lineage.SeedDemo(cmdCtx.Engine); err != nil {
					return fmt.Errorf("failed to seed demo data: %w", err)
				}
				cmdCtx.Logger.Info("demo data loaded")
			}

			srv := server.NewServer(server.Config{
				Engine: cmdCtx.Engine,
				Port:   cmdCtx.Cfg.Server.Port,
				Logger: cmdCtx.Logger,
			})
			return srv.Serve(cmd.Context())
		},
	}

	return cmd
}
