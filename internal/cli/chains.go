package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
)

// NewChainsCmd creates the chains command
func NewChainsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "chains",
		Short: "List configured chains",
		Long: `List the chains of the configuration file with their product, profile,
verification protocol and enabled components. Chains whose configuration
does not resolve are listed with the error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			format, err := outputFormat(app, output)
			if err != nil {
				return err
			}

			chains, err := app.ListChains.Run(cmd.Context())
			if err != nil {
				return err
			}
			return render.NewChainsRenderer(cmd.OutOrStdout(), format).Render(chains)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")

	return cmd
}
