package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplineage/internal/lineage"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo lineage data into the store",
		Long: `Load a small demo scenario: two operational tables feeding an
analytics table through an ETL job and a transform pipeline, with runs
and column-level lineage. With the sqlite backend the data persists.`,
		Example: `  leaplineage seed --backend sqlite --state-path lineage.db`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := lineage.SeedDemo(cmdCtx.Engine); err != nil {
				return err
			}

			snap := cmdCtx.Engine.Snapshot()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d datasets, %d jobs, %d runs\n",
				len(snap.Datasets), len(snap.Jobs), len(snap.Runs))
			return nil
		},
	}
}
