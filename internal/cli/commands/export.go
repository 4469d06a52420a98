package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		format  string
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full lineage graph",
		Long: `Serialize the entire lineage graph.

Supported formats: json (full dump including runs and column lineage),
graphml (for graph tools like yEd or Gephi), and dot (Graphviz).`,
		Example: `  # Print the graph as JSON
  leaplineage export

  # Write a Graphviz file
  leaplineage export --format dot --out lineage.dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			out, err := cmdCtx.Engine.Export(core.ExportFormat(format))
			if err != nil {
				return err
			}

			if outFile == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			}
			if err := os.WriteFile(outFile, []byte(out), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outFile, err)
			}
			cmdCtx.Logger.Info("lineage graph exported", "format", format, "file", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format (json|graphml|dot)")
	cmd.Flags().StringVar(&outFile, "out", "", "Output file (default: stdout)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "graphml", "dot"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
