package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/app"
	"github.com/trebuchet-org/catapult/internal/cli/render"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "catapult",
		Short: "Deterministic multi-chain contract deployment orchestrator",
		Long: `Catapult deploys a product's contracts to a chain through the CreateX
factory, derives every address from a salt, wires the components together
with initialization calls and verifies the sources on the chain's explorer.

Runs are idempotent: components recorded in the chain's manifest are reused
and only the missing ones are deployed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsApp(cmd) {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				// Catalog inspection works outside a project
				projectRoot = ""
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}
			cmd.SetContext(ctx)

			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Chain configuration file (default catapult.toml)")
	rootCmd.PersistentFlags().String("catalog", "", "Product catalog file replacing the built-in catalogs")
	rootCmd.PersistentFlags().String("artifacts", "", "Build output directory (default out)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Abort the command after this long (default 30m)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Deployment Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Inspection Commands",
	})

	for _, cmd := range []*cobra.Command{NewPlanCmd(), NewDeployCmd(), NewVerifyCmd()} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{NewReportCmd(), NewChainsCmd(), NewCatalogCmd()} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// skipsApp reports whether cmd runs without the application container
func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return false
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}

// outputFormat resolves --output, with --json taking precedence
func outputFormat(a *app.App, output string) (render.Format, error) {
	if a.Config.JSON {
		return render.FormatJSON, nil
	}
	return render.ParseFormat(output)
}

// chainArg returns the chain named on the command line, or asks for one
func chainArg(cmd *cobra.Command, a *app.App, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if a.Config.NonInteractive {
		return "", fmt.Errorf("a chain name is required in non-interactive mode")
	}

	chains, err := a.ListChains.Run(cmd.Context())
	if err != nil {
		return "", err
	}
	var choices []domain.ChainSummary
	for _, chain := range chains {
		if chain.Error == nil {
			choices = append(choices, chain.Summary)
		}
	}
	if len(choices) == 0 {
		return "", fmt.Errorf("no chains configured in %s", a.Config.ConfigFile)
	}
	return a.Prompter.SelectChain(cmd.Context(), choices)
}
