package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// PlanView is the serialized form of a deployment plan
type PlanView struct {
	Chain        string            `json:"chain" yaml:"chain"`
	ChainID      uint64            `json:"chainId" yaml:"chainId"`
	Product      string            `json:"product" yaml:"product"`
	Steps        []PlanStepView    `json:"steps" yaml:"steps"`
	External     map[string]string `json:"external,omitempty" yaml:"external,omitempty"`
	Initializers []string          `json:"initializers" yaml:"initializers"`
}

// PlanStepView is one step of a PlanView
type PlanStepView struct {
	Name     string   `json:"name" yaml:"name"`
	Action   string   `json:"action" yaml:"action"`
	Artifact string   `json:"artifact" yaml:"artifact"`
	Variant  string   `json:"variant,omitempty" yaml:"variant,omitempty"`
	Salt     string   `json:"salt" yaml:"salt"`
	Address  string   `json:"address,omitempty" yaml:"address,omitempty"`
	After    []string `json:"after,omitempty" yaml:"after,omitempty"`
}

// NewPlanView flattens a plan for JSON and YAML output
func NewPlanView(plan *domain.DeploymentPlan) PlanView {
	view := PlanView{
		Chain:   plan.Chain,
		ChainID: plan.ChainID,
		Product: plan.Product,
		Steps: lo.Map(plan.Steps, func(step domain.DeploymentStep, _ int) PlanStepView {
			v := PlanStepView{
				Name:     step.Component.Name,
				Action:   string(step.Action),
				Artifact: step.Component.Code.Location(),
				Variant:  step.Component.Variant,
				Salt:     step.Component.Salt,
				After:    step.Component.Dependencies(),
			}
			if step.Action == domain.StepAttach {
				v.Address = step.Address.Hex()
			}
			return v
		}),
		Initializers: lo.Map(plan.Initializers, func(step domain.InitializationStep, _ int) string {
			return step.Name
		}),
	}
	if len(plan.External) > 0 {
		view.External = lo.MapValues(plan.External, func(addr common.Address, _ string) string {
			return addr.Hex()
		})
	}
	return view
}

// PlanRenderer renders deployment plans
type PlanRenderer struct {
	out    io.Writer
	format Format
}

// NewPlanRenderer creates a new plan renderer
func NewPlanRenderer(out io.Writer, format Format) *PlanRenderer {
	return &PlanRenderer{out: out, format: format}
}

func (r *PlanRenderer) Render(plan *domain.DeploymentPlan) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(r.out, NewPlanView(plan))
	case FormatYAML:
		return writeYAML(r.out, NewPlanView(plan))
	}

	headerStyle.Fprintf(r.out, "Deployment plan for %s (chain %d, product %s)\n\n", plan.Chain, plan.ChainID, plan.Product)
	if len(plan.Steps) == 0 {
		fmt.Fprintln(r.out, "No components enabled")
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"#", "COMPONENT", "ACTION", "ARTIFACT", "SALT", "DEPENDS ON"})
	for i, step := range plan.Steps {
		action := deployedStyle.Sprint("deploy")
		if step.Action == domain.StepAttach {
			action = reusedStyle.Sprintf("attach %s", step.Address.Hex())
		}
		artifact := step.Component.Code.Artifact
		if step.Component.Variant != "" {
			artifact += faintStyle.Sprintf(" (%s)", step.Component.Variant)
		}
		t.AppendRow(table.Row{
			i + 1,
			nameStyle.Sprint(step.Component.Name),
			action,
			artifact,
			step.Component.Salt,
			orDash(strings.Join(step.Component.Dependencies(), ", ")),
		})
	}
	t.Render()

	if len(plan.External) > 0 {
		fmt.Fprintln(r.out)
		headerStyle.Fprintln(r.out, "External references:")
		for _, name := range domain.SortedKeys(plan.External) {
			fmt.Fprintf(r.out, "  %s  %s\n", name, formatAddress(plan.External[name]))
		}
	}

	if len(plan.Initializers) > 0 {
		fmt.Fprintln(r.out)
		headerStyle.Fprintln(r.out, "Initialization:")
		for _, step := range plan.Initializers {
			fmt.Fprintf(r.out, "  %s %s\n", step.Name, faintStyle.Sprint(step.Signature))
		}
	}

	fmt.Fprintf(r.out, "\n%d to deploy, %d to attach\n", plan.DeployCount(), len(plan.Steps)-plan.DeployCount())
	return nil
}
