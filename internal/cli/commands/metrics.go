package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewMetricsCommand creates the metrics command.
func NewMetricsCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show aggregate lineage metrics",
		Long: `Display aggregate statistics over the lineage store: entity counts,
currently running jobs, recent failures, and average execution time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			m := cmdCtx.Engine.Metrics()
			if outputFormat == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			}
			renderMetrics(cmd.OutOrStdout(), m)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table|json)")

	return cmd
}
