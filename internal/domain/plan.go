package domain

import "github.com/ethereum/go-ethereum/common"

// StepAction says what the deployer does for a step
type StepAction string

const (
	// StepDeploy deploys the component through the deployment facility
	StepDeploy StepAction = "deploy"
	// StepAttach reuses a supplied address without chain interaction
	StepAttach StepAction = "attach"
)

// DeploymentStep is one entry of a DeploymentPlan
type DeploymentStep struct {
	Component ComponentSpec
	Action    StepAction
	// Address is set for attach steps
	Address common.Address
}

// DeploymentPlan is a topologically ordered set of steps for one chain
type DeploymentPlan struct {
	Chain   string
	ChainID uint64
	Product string
	Steps   []DeploymentStep
	// External holds already-deployed addresses of components outside the
	// enabled set. They resolve references but are never deployed.
	External     map[string]common.Address
	Initializers []InitializationStep
}

// Names returns the component names in plan order
func (p *DeploymentPlan) Names() []string {
	names := make([]string, len(p.Steps))
	for i, step := range p.Steps {
		names[i] = step.Component.Name
	}
	return names
}

// Step returns the step for a component
func (p *DeploymentPlan) Step(name string) (*DeploymentStep, bool) {
	for i := range p.Steps {
		if p.Steps[i].Component.Name == name {
			return &p.Steps[i], true
		}
	}
	return nil, false
}

// DeployCount returns the number of steps that need a transaction
func (p *DeploymentPlan) DeployCount() int {
	count := 0
	for _, step := range p.Steps {
		if step.Action == StepDeploy {
			count++
		}
	}
	return count
}
