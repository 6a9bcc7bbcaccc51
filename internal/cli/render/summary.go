package render

import (
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// RunReport is the serialized outcome of a deploy command
type RunReport struct {
	Summary         *domain.RunSummary    `json:"summary" yaml:"summary"`
	Components      []ComponentReport     `json:"components" yaml:"components"`
	Initializations []domain.InitResult   `json:"initializations" yaml:"initializations"`
	Verification    []domain.VerifyResult `json:"verification,omitempty" yaml:"verification,omitempty"`
}

// ComponentReport is one component of a RunReport
type ComponentReport struct {
	Name           string   `json:"name" yaml:"name"`
	Status         string   `json:"status" yaml:"status"`
	Address        string   `json:"address,omitempty" yaml:"address,omitempty"`
	TxHash         string   `json:"txHash,omitempty" yaml:"txHash,omitempty"`
	Verified       bool     `json:"verified" yaml:"verified"`
	Reason         string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	SkippedBecause []string `json:"skippedBecause,omitempty" yaml:"skippedBecause,omitempty"`
}

// NewRunReport flattens a run for JSON and YAML output
func NewRunReport(output *usecase.RunOutput) RunReport {
	report := RunReport{
		Summary:         output.Summary,
		Initializations: output.Result.Initializations,
	}
	for _, c := range output.Result.Components {
		cr := ComponentReport{
			Name:           c.Name,
			Status:         string(c.Status),
			Reason:         c.Reason,
			SkippedBecause: c.SkippedBecause,
		}
		if c.Deployed != nil {
			cr.Address = c.Deployed.Address.Hex()
			cr.TxHash = c.Deployed.DeployTxRef
		}
		if c.Verification != nil {
			cr.Verified = c.Verification.Verified
			report.Verification = append(report.Verification, *c.Verification)
		}
		report.Components = append(report.Components, cr)
	}
	return report
}

// SummaryRenderer renders the outcome of a deployment run
type SummaryRenderer struct {
	out    io.Writer
	format Format
}

// NewSummaryRenderer creates a new summary renderer
func NewSummaryRenderer(out io.Writer, format Format) *SummaryRenderer {
	return &SummaryRenderer{out: out, format: format}
}

func (r *SummaryRenderer) Render(output *usecase.RunOutput) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(r.out, NewRunReport(output))
	case FormatYAML:
		return writeYAML(r.out, NewRunReport(output))
	}

	result, summary := output.Result, output.Summary

	title := fmt.Sprintf("Deployment run %s on %s (chain %d)", result.RunID, result.Chain, result.ChainID)
	if result.DryRun {
		title += " [dry run]"
	}
	fmt.Fprintln(r.out)
	headerStyle.Fprintln(r.out, title)
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"COMPONENT", "STATUS", "ADDRESS", "VERIFIED", "NOTE"})
	for _, c := range result.Components {
		address := formatAddress(common.Address{})
		if c.Deployed != nil {
			address = formatAddress(c.Deployed.Address)
		}
		verified := faintStyle.Sprint("-")
		if c.Verification != nil {
			verified = verifiedLabel(c.Verification.Verified)
		}
		t.AppendRow(table.Row{
			nameStyle.Sprint(c.Name),
			statusLabel(c.Status),
			address,
			verified,
			orDash(c.Reason),
		})
	}
	t.Render()

	if len(result.Initializations) > 0 {
		fmt.Fprintln(r.out)
		headerStyle.Fprintln(r.out, "Initialization:")
		it := newTable(r.out)
		for _, init := range result.Initializations {
			it.AppendRow(table.Row{"  " + init.Step, initLabel(init.Status), orDash(init.Reason)})
		}
		it.Render()
	}

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%d deployed, %d reused, %d failed, %d skipped in %s\n",
		len(summary.Deployed), len(summary.Reused), len(summary.Failed), len(summary.Skipped),
		summary.Duration.Round(time.Second))
	if summary.VerifyAttempts > 0 {
		fmt.Fprintf(r.out, "Verification: %d/%d verified\n", summary.VerifySucceeded, summary.VerifyAttempts)
	}

	switch {
	case summary.Cancelled:
		fmt.Fprintln(r.out, FormatWarning("Run interrupted; completed components are recorded in the manifest"))
	case summary.Success():
		fmt.Fprintln(r.out, FormatSuccess("All components are in place"))
	default:
		blocked := lo.Uniq(append(append([]string{}, summary.Failed...), summary.Skipped...))
		fmt.Fprintln(r.out, FormatError(fmt.Sprintf("%d components need attention: %v", len(blocked), blocked)))
	}
	return nil
}
