package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// CatalogRenderer renders a product catalog in dependency order
type CatalogRenderer struct {
	out    io.Writer
	format Format
}

// NewCatalogRenderer creates a new catalog renderer
func NewCatalogRenderer(out io.Writer, format Format) *CatalogRenderer {
	return &CatalogRenderer{out: out, format: format}
}

func (r *CatalogRenderer) Render(result *usecase.ShowCatalogResult) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(r.out, struct {
			Catalog *domain.Catalog `json:"catalog"`
			Order   []string        `json:"order"`
		}{result.Catalog, result.Order})
	case FormatYAML:
		// The catalog document itself, as the loader reads it
		return writeYAML(r.out, result.Catalog)
	}

	catalog := result.Catalog
	headerStyle.Fprintf(r.out, "Product %s", catalog.Product)
	if catalog.Version != "" {
		headerStyle.Fprintf(r.out, " %s", catalog.Version)
	}
	fmt.Fprintf(r.out, "\n\n")

	t := newTable(r.out)
	t.AppendHeader(table.Row{"#", "COMPONENT", "ARTIFACT", "ARGS", "VARIANTS"})
	for i, name := range result.Order {
		component, _ := catalog.Component(name)
		args := lo.Map(component.Args, func(arg domain.CatalogArg, _ int) string {
			return describeArg(arg)
		})
		t.AppendRow(table.Row{
			i + 1,
			nameStyle.Sprint(component.Name),
			component.Source + ":" + component.Artifact,
			orDash(strings.Join(args, ", ")),
			orDash(strings.Join(domain.SortedKeys(component.Variants), ", ")),
		})
	}
	t.Render()

	if len(catalog.Initializers) > 0 {
		fmt.Fprintln(r.out)
		headerStyle.Fprintln(r.out, "Initializers:")
		for _, init := range catalog.Initializers {
			line := fmt.Sprintf("  %s %s", init.Name, faintStyle.Sprint(init.Signature))
			if len(init.After) > 0 {
				line += faintStyle.Sprintf(" after %s", strings.Join(init.After, ", "))
			}
			fmt.Fprintln(r.out, line)
		}
	}
	return nil
}

func describeArg(arg domain.CatalogArg) string {
	switch {
	case arg.Ref != "":
		return "@" + arg.Ref
	case len(arg.Refs) > 0:
		refs := "[@" + strings.Join(arg.Refs, " @") + "]"
		if arg.Optional {
			refs += "?"
		}
		return refs
	case arg.Config != "":
		return "$" + arg.Config
	default:
		return fmt.Sprintf("%v", arg.Value)
	}
}
