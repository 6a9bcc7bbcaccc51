package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	var (
		reuse     []string
		reuseFrom string
		fresh     bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "plan [chain]",
		Short: "Show what a deployment would do",
		Long: `Resolve the chain configuration and print the deployment plan: the
components to deploy, the ones attached from the manifest or --reuse, and the
initialization steps. Nothing is sent to the chain.

Examples:
  catapult plan sepolia
  catapult plan sepolia --fresh
  catapult plan sepolia --reuse Registry=0x1234...
  catapult plan sepolia --reuse-from addresses.json -o json`,
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
			chain, err := chainArg(cmd, app, args)
			if err != nil {
				return err
			}
			overrides, err := parseReuse(reuse, reuseFrom)
			if err != nil {
				return err
			}

			result, err := app.PlanDeployment.Run(cmd.Context(), usecase.PlanParams{
				Chain: chain,
				Reuse: overrides,
				Fresh: fresh,
			})
			if err != nil {
				return err
			}

			return render.NewPlanRenderer(cmd.OutOrStdout(), format).Render(result.Plan)
		},
	}

	addReuseFlags(cmd, &reuse, &reuseFrom, &fresh)
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")

	return cmd
}

func addReuseFlags(cmd *cobra.Command, reuse *[]string, reuseFrom *string, fresh *bool) {
	cmd.Flags().StringArrayVar(reuse, "reuse", nil, "Reuse an existing deployment as name=address (repeatable)")
	cmd.Flags().StringVar(reuseFrom, "reuse-from", "", "JSON file of component name to address to reuse")
	cmd.Flags().BoolVar(fresh, "fresh", false, "Ignore the chain's manifest")
}
