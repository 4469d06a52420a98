package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// LineageOptions holds options for the lineage command.
type LineageOptions struct {
	Dataset       string
	Job           string
	Direction     string
	Depth         int
	IncludeSchema bool
	OutputFormat  string
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	opts := &LineageOptions{}

	cmd := &cobra.Command{
		Use:   "lineage",
		Short: "Query the lineage graph",
		Long: `Trace how data flows through datasets and jobs.

Start nodes are selected by case-insensitive substring match on the
qualified name: --dataset patterns match datasets, --job patterns match
jobs. The traversal walks up to --depth hops in the chosen direction
and prints the connected subgraph.`,
		Example: `  # Full lineage around a dataset
  leaplineage lineage --dataset customer_analytics

  # Only upstream sources, two hops
  leaplineage lineage --dataset customer_analytics --direction upstream --depth 2

  # Lineage of a job, as JSON with dataset schemas
  leaplineage lineage --job pipeline --schema --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := cmdCtx.Engine.QueryLineage(core.QueryRequest{
				DatasetName:   opts.Dataset,
				JobName:       opts.Job,
				Direction:     core.Direction(opts.Direction),
				Depth:         opts.Depth,
				IncludeSchema: opts.IncludeSchema,
			})
			if err != nil {
				return err
			}

			if opts.OutputFormat == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			renderQueryResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "Dataset name pattern")
	cmd.Flags().StringVar(&opts.Job, "job", "", "Job name pattern")
	cmd.Flags().StringVar(&opts.Direction, "direction", "both", "Traversal direction (upstream|downstream|both)")
	cmd.Flags().IntVar(&opts.Depth, "depth", 3, "Max traversal depth")
	cmd.Flags().BoolVar(&opts.IncludeSchema, "schema", false, "Include dataset schema fields")
	cmd.Flags().StringVarP(&opts.OutputFormat, "output", "o", "table", "Output format (table|json)")

	return cmd
}
