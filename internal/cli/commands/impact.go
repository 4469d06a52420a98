package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewImpactCommand creates the impact command.
func NewImpactCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "impact <namespace.dataset>",
		Short: "Analyze the downstream impact of changing a dataset",
		Long: `Estimate the blast radius of a change to a dataset.

The analysis walks the downstream closure of the dataset and reports
every dataset and job that would be affected, graded by risk. The
dataset must be given by its exact qualified name.`,
		Example: `  # What breaks if production.customers changes?
  leaplineage impact production.customers

  # As JSON
  leaplineage impact production.customers --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := cmdCtx.Engine.ImpactAnalysis(args[0])
			if err != nil {
				return err
			}

			if outputFormat == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			renderImpactReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table|json)")

	return cmd
}
