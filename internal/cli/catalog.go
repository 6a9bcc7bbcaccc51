package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/catapult/internal/cli/render"
)

// NewCatalogCmd creates the catalog command
func NewCatalogCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "catalog [product]",
		Short: "Show product catalogs",
		Long: `Without arguments, list the known products. With a product, show its
components in deployment order with their constructor arguments and the
initialization steps.`,
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

			if len(args) == 0 {
				products := app.ShowCatalog.Products()
				if format == render.FormatJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(products)
				}
				for _, product := range products {
					fmt.Fprintln(cmd.OutOrStdout(), product)
				}
				return nil
			}

			result, err := app.ShowCatalog.Run(args[0])
			if err != nil {
				return err
			}
			return render.NewCatalogRenderer(cmd.OutOrStdout(), format).Render(result)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")

	return cmd
}
