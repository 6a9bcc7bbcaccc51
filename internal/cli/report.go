package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
)

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var (
		addresses bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "report [chain]",
		Short: "Show the recorded deployments of a chain",
		Long: `Show the manifest of a chain, or of every chain with recorded deployments.
With --addresses the component name to address map is printed as JSON, the
format --reuse-from reads.

Examples:
  catapult report
  catapult report sepolia
  catapult report sepolia --addresses > sepolia.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			format, err := outputFormat(app, output)
			if err != nil {
				return err
			}

			chain := ""
			if len(args) > 0 {
				chain = args[0]
			}
			result, err := app.ShowManifest.Run(cmd.Context(), chain)
			if err != nil {
				return err
			}

			return render.NewManifestRenderer(cmd.OutOrStdout(), format, addresses).Render(result)
		},
	}

	cmd.Flags().BoolVar(&addresses, "addresses", false, "Print only the component name to address map")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")

	return cmd
}
