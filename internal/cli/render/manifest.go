package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// ManifestRenderer renders recorded manifests
type ManifestRenderer struct {
	out       io.Writer
	format    Format
	addresses bool
}

// NewManifestRenderer creates a manifest renderer. With addresses set only
// the name to address map is written, in the form --reuse-from reads.
func NewManifestRenderer(out io.Writer, format Format, addresses bool) *ManifestRenderer {
	return &ManifestRenderer{out: out, format: format, addresses: addresses}
}

func (r *ManifestRenderer) Render(result *usecase.ShowManifestResult) error {
	if r.addresses {
		return r.renderAddresses(result.Manifests)
	}

	switch r.format {
	case FormatJSON:
		if len(result.Manifests) == 1 {
			return writeJSON(r.out, result.Manifests[0])
		}
		return writeJSON(r.out, result.Manifests)
	case FormatYAML:
		return writeYAML(r.out, manifestViews(result.Manifests))
	}

	if len(result.Manifests) == 0 {
		fmt.Fprintln(r.out, "No deployments recorded")
		return nil
	}

	for i, manifest := range result.Manifests {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		r.renderManifest(manifest)
	}
	return nil
}

func (r *ManifestRenderer) renderManifest(m *domain.Manifest) {
	headerStyle.Fprintf(r.out, "%s (chain %d, product %s)\n", m.Chain, m.ChainID, m.Product)
	if !m.UpdatedAt.IsZero() {
		faintStyle.Fprintf(r.out, "last run %s at %s\n", m.LastRunID, m.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(r.out)

	if len(m.Components) == 0 {
		fmt.Fprintln(r.out, "No components recorded")
		return
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"COMPONENT", "ADDRESS", "ARTIFACT", "VERIFIED", "TX"})
	for _, name := range domain.SortedKeys(m.Components) {
		entry := m.Components[name]
		artifact := entry.Artifact
		if entry.Variant != "" {
			artifact += faintStyle.Sprintf(" (%s)", entry.Variant)
		}
		t.AppendRow(table.Row{
			nameStyle.Sprint(name),
			formatAddress(entry.Address),
			artifact,
			verifiedLabel(entry.Verified),
			faintStyle.Sprint(orDash(entry.TxHash)),
		})
	}
	t.Render()

	if len(m.Initialized) > 0 {
		fmt.Fprintln(r.out)
		headerStyle.Fprintln(r.out, "Initialized:")
		for _, step := range domain.SortedKeys(m.Initialized) {
			fmt.Fprintf(r.out, "  %s %s\n", step, faintStyle.Sprint(m.Initialized[step].TxHash))
		}
	}
}

func (r *ManifestRenderer) renderAddresses(manifests []*domain.Manifest) error {
	if len(manifests) != 1 {
		return fmt.Errorf("address output needs exactly one chain, got %d", len(manifests))
	}
	addresses := make(map[string]string, len(manifests[0].Components))
	for name, addr := range manifests[0].Addresses() {
		addresses[name] = addr.Hex()
	}
	if r.format == FormatYAML {
		return writeYAML(r.out, addresses)
	}
	return writeJSON(r.out, addresses)
}

type manifestView struct {
	Chain       string            `yaml:"chain"`
	ChainID     uint64            `yaml:"chainId"`
	Product     string            `yaml:"product"`
	LastRunID   string            `yaml:"lastRunId"`
	Components  map[string]string `yaml:"components"`
	Verified    []string          `yaml:"verified"`
	Initialized []string          `yaml:"initialized"`
}

func manifestViews(manifests []*domain.Manifest) []manifestView {
	views := make([]manifestView, 0, len(manifests))
	for _, m := range manifests {
		view := manifestView{
			Chain:       m.Chain,
			ChainID:     m.ChainID,
			Product:     m.Product,
			LastRunID:   m.LastRunID,
			Components:  make(map[string]string, len(m.Components)),
			Verified:    []string{},
			Initialized: domain.SortedKeys(m.Initialized),
		}
		for _, name := range domain.SortedKeys(m.Components) {
			view.Components[name] = m.Components[name].Address.Hex()
			if m.Components[name].Verified {
				view.Verified = append(view.Verified, name)
			}
		}
		views = append(views, view)
	}
	return views
}
