package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		force       bool
		all         bool
		concurrency int
		attempts    int
		output      string
	)

	cmd := &cobra.Command{
		Use:   "verify <chain> [component...]",
		Short: "Verify recorded components on the chain's explorer",
		Long: `Verify components recorded in a chain's manifest, using the verification
protocol of the chain's profile. Without component names an interactive
selection is shown; with --all or --non-interactive every unverified
component is submitted.

Examples:
  catapult verify sepolia Vault Router
  catapult verify sepolia --all
  catapult verify sepolia Vault --force`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			format, err := outputFormat(app, output)
			if err != nil {
				return err
			}

			chain, names := args[0], args[1:]
			if len(names) == 0 && !all && !app.Config.NonInteractive && !app.Config.JSON {
				candidates, err := app.VerifyComponents.Candidates(cmd.Context(), chain, force)
				if err != nil {
					return err
				}
				if len(candidates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to verify. Use --force to re-verify verified components.")
					return nil
				}
				names, err = SelectComponents(candidates, fmt.Sprintf("Select components to verify on %s", chain))
				if err != nil {
					return err
				}
			}

			result, err := app.VerifyComponents.Run(cmd.Context(), usecase.VerifyComponentsParams{
				Chain: chain,
				Names: names,
				Force: force,
				Options: usecase.VerifyOptions{
					Concurrency: concurrency,
					Attempts:    attempts,
				},
			})
			if result == nil {
				return err
			}
			if renderErr := render.NewVerifyRenderer(cmd.OutOrStdout(), format).Render(result); renderErr != nil {
				return renderErr
			}
			if err != nil {
				return err
			}

			for _, r := range result.Results {
				if !r.Verified {
					return fmt.Errorf("verification failed for some components on %s", chain)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-verify components already marked verified")
	cmd.Flags().BoolVar(&all, "all", false, "Verify every unverified component without prompting")
	cmd.Flags().IntVar(&concurrency, "concurrency", usecase.DefaultVerifyConcurrency, "Verification submissions in flight")
	cmd.Flags().IntVar(&attempts, "attempts", usecase.DefaultVerifyAttempts, "Verification attempts per component")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")

	return cmd
}
