package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		reuse             []string
		reuseFrom         string
		fresh             bool
		dryRun            bool
		yes               bool
		skipVerify        bool
		verifyReused      bool
		verifyConcurrency int
		verifyAttempts    int
		metricsFile       string
		output            string
	)

	cmd := &cobra.Command{
		Use:   "deploy [chain]",
		Short: "Deploy, initialize and verify a product on a chain",
		Long: `Deploy every enabled component of the chain's product that is not in the
manifest yet, run the initialization calls and verify the new contracts.

Deployments go through the CreateX factory with deterministic salts, so a
repeated run only fills in what is missing. When a component fails, the
components depending on it are skipped; the rest of the run continues.

Examples:
  catapult deploy sepolia
  catapult deploy sepolia --dry-run
  catapult deploy mainnet --yes --metrics-file metrics.prom
  catapult deploy base --reuse Registry=0x1234... --skip-verify`,
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

			out, err := app.RunDeployment.Run(cmd.Context(), usecase.RunParams{
				PlanParams: usecase.PlanParams{
					Chain: chain,
					Reuse: overrides,
					Fresh: fresh,
				},
				DryRun:       dryRun,
				SkipConfirm:  yes,
				SkipVerify:   skipVerify,
				VerifyReused: verifyReused,
				Verify: usecase.VerifyOptions{
					Concurrency: verifyConcurrency,
					Attempts:    verifyAttempts,
				},
				MetricsFile: metricsFile,
			})
			if errors.Is(err, domain.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Deployment cancelled")
				return nil
			}
			if out == nil {
				return err
			}

			if renderErr := render.NewSummaryRenderer(cmd.OutOrStdout(), format).Render(out); renderErr != nil {
				return renderErr
			}
			if err != nil {
				return err
			}
			if !out.Summary.Success() {
				return fmt.Errorf("deployment to %s incomplete: %d failed, %d skipped", out.Result.Chain, len(out.Summary.Failed), len(out.Summary.Skipped))
			}
			return nil
		},
	}

	addReuseFlags(cmd, &reuse, &reuseFrom, &fresh)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate the run without sending transactions or saving the manifest")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Do not verify deployed contracts")
	cmd.Flags().BoolVar(&verifyReused, "verify-reused", false, "Also verify components reused from the manifest")
	cmd.Flags().IntVar(&verifyConcurrency, "verify-concurrency", usecase.DefaultVerifyConcurrency, "Verification submissions in flight")
	cmd.Flags().IntVar(&verifyAttempts, "verify-attempts", usecase.DefaultVerifyAttempts, "Verification attempts per component")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")

	return cmd
}
