package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

type chainView struct {
	Name         string   `json:"name" yaml:"name"`
	ChainID      uint64   `json:"chainId,omitempty" yaml:"chainId,omitempty"`
	Product      string   `json:"product,omitempty" yaml:"product,omitempty"`
	Profile      string   `json:"profile,omitempty" yaml:"profile,omitempty"`
	Verification string   `json:"verification,omitempty" yaml:"verification,omitempty"`
	Admin        string   `json:"admin,omitempty" yaml:"admin,omitempty"`
	Enabled      []string `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Error        string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// ChainsRenderer renders the configured chains
type ChainsRenderer struct {
	out    io.Writer
	format Format
}

// NewChainsRenderer creates a new chains renderer
func NewChainsRenderer(out io.Writer, format Format) *ChainsRenderer {
	return &ChainsRenderer{out: out, format: format}
}

func (r *ChainsRenderer) Render(chains []usecase.ChainStatus) error {
	views := make([]chainView, len(chains))
	for i, chain := range chains {
		s := chain.Summary
		views[i] = chainView{Name: s.Name}
		if chain.Error != nil {
			views[i].Error = chain.Error.Error()
			continue
		}
		views[i].ChainID = s.ChainID
		views[i].Product = s.Product
		views[i].Profile = s.Profile
		views[i].Verification = string(s.Verification)
		views[i].Admin = s.Admin.Hex()
		views[i].Enabled = s.Enabled
	}

	switch r.format {
	case FormatJSON:
		return writeJSON(r.out, views)
	case FormatYAML:
		return writeYAML(r.out, views)
	}

	if len(chains) == 0 {
		fmt.Fprintln(r.out, "No chains configured")
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"CHAIN", "ID", "PRODUCT", "PROFILE", "VERIFICATION", "ENABLED"})
	for _, v := range views {
		if v.Error != "" {
			t.AppendRow(table.Row{failedStyle.Sprint(v.Name), "", "", "", "", failedStyle.Sprint(v.Error)})
			continue
		}
		t.AppendRow(table.Row{
			nameStyle.Sprint(v.Name),
			v.ChainID,
			v.Product,
			v.Profile,
			v.Verification,
			fmt.Sprintf("%d %s", len(v.Enabled), faintStyle.Sprint(strings.Join(v.Enabled, ", "))),
		})
	}
	t.Render()
	return nil
}
